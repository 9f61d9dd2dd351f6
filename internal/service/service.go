// Package service orquestra os repositórios em etapas de provisionamento
// idempotentes. Cada etapa pode rodar de novo numa conta que já tenha parte ou
// todos os seus recursos.
package service

import "github.com/raywall/wanwu/internal/logging"

func loggerOrDiscard(l logging.LogManager) logging.LogManager {
	if l == nil {
		return logging.Discard()
	}
	return l
}
