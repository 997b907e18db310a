package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

func TestRespondBadState(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondBadState(rec, &domain.TransitionError{
		Status:        domain.StatusCancelled,
		PaymentStatus: domain.PaymentUnpaid,
		Reason:        "booking is cancelled",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body BadStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeBadState, body.Code)
	assert.Equal(t, "CANCELLED", body.Status)
	assert.Equal(t, "UNPAID", body.PaymentStatus)
}

func TestRespondCapacity(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondCapacity(rec, 1, 1)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body CapacityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeCapacity, body.Code)
	assert.True(t, body.UpgradeRequired)
	assert.Equal(t, 1, body.Limit)
	assert.Equal(t, 1, body.CurrentCount)
}

func TestDecodeAndValidate(t *testing.T) {
	type payload struct {
		Name string `json:"name" validate:"required"`
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
		var p payload
		assert.NoError(t, DecodeAndValidate(req, &p))
		assert.Equal(t, "x", p.Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
		var p payload
		assert.Error(t, DecodeAndValidate(req, &p))
	})

	t.Run("missing required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		var p payload
		assert.Error(t, DecodeAndValidate(req, &p))
	})
}

func TestPathInt64(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "42", "bad": "x", "neg": "-1"})

	id, err := PathInt64(req, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = PathInt64(req, "bad")
	assert.Error(t, err)
	_, err = PathInt64(req, "neg")
	assert.Error(t, err)
	_, err = PathInt64(req, "missing")
	assert.Error(t, err)
}
