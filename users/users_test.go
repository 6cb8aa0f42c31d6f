package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-session-gateway/users"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	t.Run("Clone does not alias", func(t *testing.T) {
		gst := "GST-1"
		p := &users.Profile{ID: 1, FullName: "A", GSTNumber: &gst}
		c := p.Clone()
		*c.GSTNumber = "GST-2"
		c.FullName = "B"
		require.Equal(t, "GST-1", p.GST())
		require.Equal(t, "A", p.FullName)

		var nilProfile *users.Profile
		require.Nil(t, nilProfile.Clone())
	})

	t.Run("DisplayName falls back to email", func(t *testing.T) {
		require.Equal(t, "A", (&users.Profile{FullName: "A", Email: "a@b.com"}).DisplayName())
		require.Equal(t, "a@b.com", (&users.Profile{Email: "a@b.com"}).DisplayName())
	})

	t.Run("Backend field names", func(t *testing.T) {
		var p users.Profile
		require.NoError(t, json.Unmarshal([]byte(`{"id":1,"email":"a@b.com","full_name":"A","company":"C","gst_number":null,"user_id":"USR-1","is_verified":true}`), &p))
		require.Equal(t, "USR-1", p.UserID)
		require.Equal(t, "", p.GST())
		require.True(t, p.IsVerified)
	})
}

func TestSignInResponse(t *testing.T) {
	var resp users.SignInResponse
	require.NoError(t, json.Unmarshal([]byte(`{"access":"T1","refresh":"T2","expires_in":300,"user":{"id":1,"email":"a@b.com"}}`), &resp))
	require.Equal(t, "T1", resp.Access)
	require.Equal(t, 300, *resp.ExpiresIn)
	require.Equal(t, int64(1), resp.User.ID)
}
