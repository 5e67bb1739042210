package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() chi.Router {
	router := chi.NewRouter()
	NewHandler(zerolog.New(nil).Level(zerolog.Disabled)).RegisterRoutes(router)
	return router
}

func postJSON(t *testing.T, router chi.Router, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleGroundEnergy(t *testing.T) {
	router := newTestRouter()

	// Two-site transverse-field Ising model; the exact ground energy
	// is -sqrt(2).
	rec := postJSON(t, router, "/operators/ground-energy", `{
		"terms": [
			{"paulis": "ZZ", "coeff": -1},
			{"paulis": "XI", "coeff": -0.5},
			{"paulis": "IX", "coeff": -0.5}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Qubits       int     `json:"qubits"`
			Terms        int     `json:"terms"`
			Bound        float64 `json:"bound"`
			GroundEnergy float64 `json:"ground_energy"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Qubits)
	assert.Equal(t, 3, resp.Data.Terms)
	assert.InDelta(t, 2.0, resp.Data.Bound, 1e-12)
	assert.InDelta(t, -math.Sqrt2, resp.Data.GroundEnergy, 1e-9)
}

func TestHandleGroundEnergyValidation(t *testing.T) {
	router := newTestRouter()

	t.Run("malformed body", func(t *testing.T) {
		rec := postJSON(t, router, "/operators/ground-energy", `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown pauli symbol", func(t *testing.T) {
		rec := postJSON(t, router, "/operators/ground-energy", `{
			"terms": [{"paulis": "W", "coeff": 1}]
		}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("register too large for diagonalization", func(t *testing.T) {
		rec := postJSON(t, router, "/operators/ground-energy", `{
			"terms": [{"paulis": "ZZZZZZZZZZZZZ", "coeff": 1}]
		}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
