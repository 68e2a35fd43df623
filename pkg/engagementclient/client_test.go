package engagementclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL, APIKey: "test-key"})
}

func TestGetRequestByExternalID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		var gotExternalID, gotAuth string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotExternalID = r.URL.Query().Get("externalId")
			gotAuth = r.Header.Get("Authorization")
			assert.Equal(t, "/api/v1/absence-requests", r.URL.Path)
			_, _ = w.Write([]byte(`{"data": {"id": "R1", "externalId": "100", "status": "PENDING"}}`))
		})

		req, err := c.GetRequestByExternalID(context.Background(), "100")
		require.NoError(t, err)
		assert.Equal(t, "100", gotExternalID)
		assert.Equal(t, "Bearer test-key", gotAuth)
		assert.Equal(t, "R1", req.ID)
		assert.Equal(t, datamodel.EngagementStatusPending, req.Status)
	})

	t.Run("http-404-maps-to-not-found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := c.GetRequestByExternalID(context.Background(), "100")
		assert.ErrorIs(t, err, datamodel.ErrNotFound)
	})

	t.Run("empty-result-maps-to-not-found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": {}}`))
		})

		_, err := c.GetRequestByExternalID(context.Background(), "100")
		assert.ErrorIs(t, err, datamodel.ErrNotFound)
	})
}

func TestApproveAndReject(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusNoContent)
	}

	t.Run("approve", func(t *testing.T) {
		c := newTestClient(t, handler)
		require.NoError(t, c.Approve(context.Background(), "approver-1", "R1"))
		assert.Equal(t, "/api/v1/absence-requests/R1/approve", gotPath)
		assert.Equal(t, "approver-1", gotPayload["approverId"])
	})

	t.Run("reject", func(t *testing.T) {
		c := newTestClient(t, handler)
		require.NoError(t, c.Reject(context.Background(), "approver-1", "R2"))
		assert.Equal(t, "/api/v1/absence-requests/R2/reject", gotPath)
		assert.Equal(t, "approver-1", gotPayload["approverId"])
	})
}

func TestPatchExternalID(t *testing.T) {
	var gotMethod, gotPath string
	var gotPayload map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.PatchExternalID(context.Background(), "R1", "900"))
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/v1/absence-requests/R1", gotPath)
	assert.Equal(t, "900", gotPayload["externalId"])
}

func TestSyncSessionLifecycle(t *testing.T) {
	t.Run("start-returns-session-id", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/absence-sync/sessions", r.URL.Path)
			_, _ = w.Write([]byte(`{"sessionId": "sess-1"}`))
		})

		id, err := c.StartSync(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "sess-1", id)
	})

	t.Run("start-rejects-empty-session-id", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := c.StartSync(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty session id")
	})

	t.Run("push-sends-items", func(t *testing.T) {
		var gotPath string
		var gotPayload struct {
			Items []datamodel.SyncItem `json:"items"`
		}
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
			w.WriteHeader(http.StatusNoContent)
		})

		items := []datamodel.SyncItem{
			{ExternalID: "900", Status: datamodel.EngagementStatusApproved},
		}
		require.NoError(t, c.PushSyncBatch(context.Background(), "sess-1", items))
		assert.Equal(t, "/api/v1/absence-sync/sessions/sess-1/items", gotPath)
		require.Len(t, gotPayload.Items, 1)
		assert.Equal(t, "900", gotPayload.Items[0].ExternalID)
	})

	t.Run("complete-and-cancel-paths", func(t *testing.T) {
		var gotPaths []string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPaths = append(gotPaths, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, c.CompleteSync(context.Background(), "sess-1"))
		require.NoError(t, c.CancelSync(context.Background(), "sess-2"))
		assert.Equal(t, []string{
			"/api/v1/absence-sync/sessions/sess-1/complete",
			"/api/v1/absence-sync/sessions/sess-2/cancel",
		}, gotPaths)
	})
}

func TestGetAbsencePolicies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/absence-policies", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": [
			{"id": "pol-1", "name": "Vacation", "externalReference": "3"},
			{"id": "pol-2", "name": "Sick leave", "externalReference": "4"}
		]}`))
	})

	policies, err := c.GetAbsencePolicies(context.Background())
	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, "pol-1", policies[0].ID)
	assert.Equal(t, "3", policies[0].ExternalReference)
}

func TestListUsers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": [{"id": "user-1", "email": "jane@example.com"}]}`))
	})

	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "user-1", users[0].ID)
	assert.Equal(t, "jane@example.com", users[0].Email)
}

func TestErrorBodySurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": "another session is open"}`))
	})

	_, err := c.StartSync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 409")
	assert.Contains(t, err.Error(), "another session is open")
}
