package email

import (
	"testing"

	"districtevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_RegistrationConfirmation(t *testing.T) {
	r := NewTemplateRenderer()

	tests := []struct {
		name      string
		total     float64
		wantPrice string
	}{
		{name: "free", total: 0, wantPrice: "Free"},
		{name: "paid", total: 20, wantPrice: "$20.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, html, text, err := r.Render("registration_confirmation", &domain.RegistrationConfirmationEmailData{
				AttendeeName:     "Ann <Lee>",
				EventTitle:       "Harvest Festival",
				EventDate:        "Saturday, October 3, 2026 at 5:00 PM",
				EventLocation:    "Fellowship Hall",
				NumTickets:       2,
				TotalPrice:       tt.total,
				ConfirmationCode: "AB12CD34",
			})
			require.NoError(t, err)
			assert.Equal(t, "Registration confirmed: Harvest Festival", subject)
			assert.Contains(t, text, "AB12CD34")
			assert.Contains(t, text, "2 tickets")
			assert.Contains(t, text, tt.wantPrice)
			assert.Contains(t, html, tt.wantPrice)
			assert.Contains(t, html, "Ann &lt;Lee&gt;")
		})
	}
}

func TestTemplateRenderer_UserInvite(t *testing.T) {
	subject, html, text, err := NewTemplateRenderer().Render("user_invite", &domain.UserInviteEmailData{
		Email:      "pastor@example.com",
		RoleName:   "Church Administrator",
		ChurchName: "St. Mark",
		InviteURL:  "https://district.example.org/accept-invite?token=abc",
		ExpiresIn:  "7 days",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, subject)
	assert.Contains(t, text, "Church Administrator for St. Mark")
	assert.Contains(t, text, "https://district.example.org/accept-invite?token=abc")
	assert.Contains(t, html, `href="https://district.example.org/accept-invite?token=abc"`)
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("missing", nil)
	require.Error(t, err)
}
