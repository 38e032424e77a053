package services

import (
	"time"

	"medipal/models"
)

const (
	defaultPlan       = "free"
	defaultTokens     = 20000
	defaultPeriodType = "daily"
	quotaPeriod       = 24 * time.Hour
)

// Provisioner lazily creates the records backing an authenticated identity.
type Provisioner struct {
	now func() time.Time
}

func NewProvisioner(now func() time.Time) *Provisioner {
	return &Provisioner{now: now}
}

// Bundle is the combined per-user view served to an authenticated caller.
// All three pointers reference entries inside the document they were
// ensured against.
type Bundle struct {
	User    *models.User
	Profile *models.Profile
	Quota   *models.Quota
}

// Ensure guarantees the identity's user, profile and quota records exist
// in doc, appending defaults for whichever are missing, in that order. An
// existing user's email is overwritten when the token carries a different
// non-empty one. Calling Ensure again for the same identity changes
// nothing else.
func (p *Provisioner) Ensure(doc *models.Document, id models.Identity) Bundle {
	var user *models.User
	for i := range doc.Users {
		if doc.Users[i].ID == id.UserID {
			user = &doc.Users[i]
			break
		}
	}
	if user == nil {
		doc.Users = append(doc.Users, models.User{
			ID:        id.UserID,
			Email:     id.Email,
			CreatedAt: p.now(),
		})
		user = &doc.Users[len(doc.Users)-1]
	} else if id.Email != "" && user.Email != id.Email {
		user.Email = id.Email
	}

	var profile *models.Profile
	for i := range doc.Profiles {
		if doc.Profiles[i].UserID == id.UserID {
			profile = &doc.Profiles[i]
			break
		}
	}
	if profile == nil {
		doc.Profiles = append(doc.Profiles, models.Profile{
			UserID:    id.UserID,
			UpdatedAt: p.now(),
		})
		profile = &doc.Profiles[len(doc.Profiles)-1]
	}

	var quota *models.Quota
	for i := range doc.Quotas {
		if doc.Quotas[i].UserID == id.UserID {
			quota = &doc.Quotas[i]
			break
		}
	}
	if quota == nil {
		doc.Quotas = append(doc.Quotas, models.Quota{
			UserID:          id.UserID,
			Plan:            defaultPlan,
			TokensRemaining: defaultTokens,
			PeriodType:      defaultPeriodType,
			ResetAt:         p.now().Add(quotaPeriod),
		})
		quota = &doc.Quotas[len(doc.Quotas)-1]
	}

	return Bundle{User: user, Profile: profile, Quota: quota}
}
