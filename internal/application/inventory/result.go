package inventory

import "github.com/rs/zerolog"

// OrEmpty devolve v quando err é nil. Caso contrário registra a falha e devolve o valor zero de T.
// É o único caminho para degradar uma leitura para vazio: o chamador precisa optar explicitamente.
func OrEmpty[T any](log zerolog.Logger, op string, v T, err error) T {
	if err == nil {
		return v
	}
	log.Error().Err(err).Str("operation", op).Msg("leitura degradada para vazio")
	var zero T
	return zero
}
