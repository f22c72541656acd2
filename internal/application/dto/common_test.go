package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/gasdepot-api/internal/application/dto"
)

func TestPageRequest_Normalize(t *testing.T) {
	cases := []struct {
		name string
		in   dto.PageRequest
		want dto.PageRequest
	}{
		{"vacío usa default", dto.PageRequest{}, dto.PageRequest{Limit: 50}},
		{"tope", dto.PageRequest{Limit: 1000, Offset: 10}, dto.PageRequest{Limit: 200, Offset: 10}},
		{"negativos", dto.PageRequest{Limit: -1, Offset: -5}, dto.PageRequest{Limit: 50}},
		{"válido intacto", dto.PageRequest{Limit: 7, Offset: 14}, dto.PageRequest{Limit: 7, Offset: 14}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.in
			p.Normalize(50, 200)
			assert.Equal(t, tc.want, p)
		})
	}
}
