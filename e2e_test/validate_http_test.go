//go:build e2e
// +build e2e

package e2e_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quaverlabs/partita/cmd"
	"github.com/quaverlabs/partita/validate"
)

const validDoc = `
partList:
  - scorePart: {id: P1}
parts:
  - id: P1
    measures:
      - number: "1"
        attributes:
          divisions: 1
          time: {beats: 4, beatType: 4}
        entries:
          - note: {pitch: {step: C, octave: 4}, duration: 4, voice: "1"}
`

const invalidDoc = `
parts:
  - id: P1
    measures:
      - number: "1"
        attributes:
          divisions: 1
          time: {beats: 4, beatType: 4}
        entries:
          - note: {pitch: {step: C, octave: 4}, duration: 4, voice: "1"}
`

func postScore(t *testing.T, doc string) validate.Result {
	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(doc))
	w := httptest.NewRecorder()
	cmd.HandleValidate(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, 200, resp.StatusCode)

	var res validate.Result
	if err := json.Unmarshal(body, &res); err != nil {
		panic(err.Error())
	}
	return res
}

func TestValidScoreOverHTTP(t *testing.T) {
	res := postScore(t, validDoc)

	assert := assert.New(t)
	assert.True(res.Valid)
	assert.Empty(res.Errors)
}

func TestInvalidScoreOverHTTP(t *testing.T) {
	res := postScore(t, invalidDoc)

	assert := assert.New(t)
	assert.False(res.Valid)
	assert.Len(res.Errors, 1)
	assert.Equal("PART_ID_NOT_IN_PART_LIST", string(res.Errors[0].Code))
}

func TestMalformedBodyOverHTTP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader("{nonsense"))
	w := httptest.NewRecorder()
	cmd.HandleValidate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}
