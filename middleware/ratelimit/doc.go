// Package ratelimit fornece adapters HTTP (net/http) para identificação do cliente,
// limite de concorrência e tradução de rejeições em headers.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (cota por janela, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela deslizante em memória/Redis, semáforo, stats)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + headers
//
// Fluxo no servidor:
//
//  1. IdentifyMiddleware extrai a chave do cliente (header/XFF/RemoteAddr) e guarda no contexto
//  2. ConcurrencyMiddleware limita requisições simultâneas (503)
//  3. O orquestrador lê ClientKey(ctx) e consulta a cota da operação (429 no handler)
//
// A chave vazia vira Anonymous: todos os clientes sem identificação dividem a mesma cota.
package ratelimit
