// leadctl é o cliente de linha de comando do leadfinder: busca, paginação,
// leads salvos e exportação CSV.
package main

import (
	"os"
)

func main() {
	if err := execute(os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
