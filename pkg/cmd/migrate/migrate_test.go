package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrepareURLForDB(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"postgresql://u:p@db:5432/rss", "postgresql://u:p@db:5432/rss?sslmode=disable"},
		{"postgresql://u:p@db/rss?pool_max_conns=2", "postgresql://u:p@db/rss?pool_max_conns=2&sslmode=disable"},
		{"postgresql://u:p@db/rss?sslmode=require", "postgresql://u:p@db/rss?sslmode=require"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, prepareURLForDB(tt.url), tt.url)
	}
}
