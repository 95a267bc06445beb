package entity

import "io"

// Upload é o arquivo enviado pelo usuário, ainda não lido.
type Upload struct {
	Name      string
	MediaType string
	// Size is -1 when unknown.
	Size int64
	Body io.Reader
}
