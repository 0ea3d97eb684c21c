package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConversationKeySeparatesJobs(t *testing.T) {
	a := ChatPartner{Identifier: "anna", JobID: "1"}
	b := ChatPartner{Identifier: "anna", JobID: "2"}

	assert.Equal(t, "anna_job_1", a.Key())
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestSessionActive(t *testing.T) {
	now := time.Now()
	s := Session{ID: uuid.New(), ExpiresAt: now.Add(time.Hour)}
	assert.True(t, s.Active(now))
	assert.False(t, s.Active(now.Add(2*time.Hour)))

	revoked := now
	s.RevokedAt = &revoked
	assert.False(t, s.Active(now))
}

func TestPublicProfileStripsPrivateFields(t *testing.T) {
	p := Profile{Email: "a@uni.edu", IDDocumentURL: "https://x", PasswordHash: "h", FullName: "Anna"}
	pub := p.PublicProfile()

	assert.Empty(t, pub.Email)
	assert.Empty(t, pub.IDDocumentURL)
	assert.Equal(t, "Anna", pub.FullName)
	assert.Equal(t, "a@uni.edu", p.Email)
}

func TestJobOpen(t *testing.T) {
	assert.True(t, Job{Partner: NoPartner}.Open())
	assert.False(t, Job{Partner: uuid.NewString()}.Open())
}
