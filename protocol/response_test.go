package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponse_FoldData_PreservesOrder(t *testing.T) {
	resp := NewResponse()

	resp.FoldData([]byte(`{"head":`))
	resp.FoldData([]byte(`{"vars":["s"]},`))
	resp.FoldData([]byte(`"results":{"bindings":[]}}`))

	assert.Equal(t, `{"head":{"vars":["s"]},"results":{"bindings":[]}}`, string(resp.Body()))
	assert.Equal(t, 48, resp.Len())
}

func TestResponse_FoldStatus_LastWriteWins(t *testing.T) {
	resp := NewResponse()
	assert.Equal(t, 0, resp.Status)

	resp.FoldStatus(100)
	resp.FoldStatus(200)
	assert.Equal(t, 200, resp.Status)
}

func TestResponse_FoldHeader_LastWriteWins(t *testing.T) {
	resp := NewResponse()

	resp.FoldHeader("content-type", []string{"text/plain"})
	resp.FoldHeader("Content-Type", []string{"application/sparql-results+json"})

	assert.Equal(t, "application/sparql-results+json", resp.Header.Get("Content-Type"))
	assert.Len(t, resp.Header, 1)
}

func TestResponse_Succeeded(t *testing.T) {
	tests := []struct {
		status   int
		expected bool
	}{
		{0, false},
		{199, false},
		{200, true},
		{204, true},
		{299, true},
		{300, false},
		{404, false},
		{500, false},
	}

	for _, test := range tests {
		resp := NewResponse()
		resp.FoldStatus(test.status)
		assert.Equal(t, test.expected, resp.Succeeded(), "status %d", test.status)
	}
}
