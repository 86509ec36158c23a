// Package domain define os tipos de negócio retornados pelo diretório de lugares,
// a taxonomia de erros da busca e os contratos dos gateways.
package domain
