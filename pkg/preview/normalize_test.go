package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind Kind
		wantData any
		wantText string
	}{
		{name: "object", body: `{"data":{"x":1}}`, wantKind: KindStructured, wantData: map[string]any{"data": map[string]any{"x": float64(1)}}},
		{name: "array", body: `[1,"a"]`, wantKind: KindStructured, wantData: []any{float64(1), "a"}},
		{name: "json scalar", body: `42`, wantKind: KindStructured, wantData: float64(42)},
		{name: "json null", body: `null`, wantKind: KindStructured, wantData: nil},
		{name: "plain text", body: `not json`, wantKind: KindText, wantText: "not json"},
		{name: "truncated json", body: `{"data":`, wantKind: KindText, wantText: `{"data":`},
		{name: "empty body", body: ``, wantKind: KindText, wantText: ""},
		{name: "html", body: `<html>502</html>`, wantKind: KindText, wantText: "<html>502</html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize([]byte(tt.body))
			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Equal(t, tt.wantData, res.Data)
			assert.Equal(t, tt.wantText, res.Text)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		contentType string
		want        Category
	}{
		{"", CategoryUnknown},
		{"application/json", CategoryJSON},
		{"application/json; charset=utf-8", CategoryJSON},
		{"application/graphql-response+json", CategoryJSON},
		{"text/html; charset=utf-8", CategoryHTML},
		{"application/xml", CategoryXML},
		{"text/plain", CategoryText},
		{"application/octet-stream", CategoryBinary},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.contentType))
		})
	}
}
