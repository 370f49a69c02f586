package stub_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/members"
	"github.com/pastoreohq/go-pastoreo/internal/stub"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServer(t *testing.T) (*stub.Server, *httptest.Server) {
	t.Helper()
	srv := stub.New(stub.Options{Logger: discardLogger()})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func login(t *testing.T, ts *httptest.Server, email, password string) *http.Response {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLoginEndpoint(t *testing.T) {
	srv, ts := newServer(t)
	srv.SeedUser("pastor@ejemplo.org", "secreto123", "Pastor Prueba", "c1", false)

	t.Run("valid credentials", func(t *testing.T) {
		resp := login(t, ts, "pastor@ejemplo.org", "secreto123")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result api.LoginResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, "c1", result.ChurchID)
		assert.Equal(t, "Pastor Prueba", result.User.FullName)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := login(t, ts, "pastor@ejemplo.org", "mal")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Credenciales inválidas", body["message"])
	})

	t.Run("unknown user", func(t *testing.T) {
		resp := login(t, ts, "nadie@ejemplo.org", "x")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthRequired(t *testing.T) {
	_, ts := newServer(t)

	t.Run("no token", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/members")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/members", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer not-a-jwt")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestDeleteMemberConflict(t *testing.T) {
	srv, ts := newServer(t)
	srv.SeedUser("pastor@ejemplo.org", "secreto123", "Pastor Prueba", "c1", false)
	m := srv.SeedMember(members.Member{Person: members.PersonName{FirstName: "Ana", LastName: "López"}}, 1)

	resp := login(t, ts, "pastor@ejemplo.org", "secreto123")
	var result api.LoginResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/members/"+m.ID, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+result.AccessToken)

	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()

	require.Equal(t, http.StatusConflict, del.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(del.Body).Decode(&body))
	assert.Equal(t, "tiene referencias activas", body["message"])
}
