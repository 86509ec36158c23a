// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - WindowStore: janela deslizante em memória, chaves limitadas por LRU (golang-lru)
//   - RedisWindowStore: mesma janela sobre sorted set no Redis (script Lua atômico)
//   - MemoryStatsStore / RedisStatsStore: estatísticas allow/deny
//   - ChanPool: semáforo simples para limite de concorrência
package infra
