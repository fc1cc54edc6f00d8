package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"relatório de auditoria.pdf", "relatorio_de_auditoria.pdf"},
		{"Ação Corretiva (v2).XLSX", "Acao_Corretiva_v2.xlsx"},
		{"plain.txt", "plain.txt"},
		{"  spaces  everywhere .doc", "spaces_everywhere.doc"},
		{"!!!.pdf", "file.pdf"},
		{"noextension", "noextension"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestTimestampedName(t *testing.T) {
	now := time.Date(2024, 5, 15, 9, 4, 5, 0, time.UTC)
	assert.Equal(t, "20240515090405_relatorio.pdf", TimestampedName("relatório.pdf", now))
}
