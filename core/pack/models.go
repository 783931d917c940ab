package pack

import (
	"time"

	"github.com/espanolfacil/academy/core"
)

type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaImage MediaType = "image"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Pack is a course offer students enroll in.
type Pack struct {
	ID                 string    `json:"id"`
	Code               string    `json:"code"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	DateStart          core.Date `json:"date_start"`
	DateEnd            core.Date `json:"date_end"`
	DateDeadline       core.Date `json:"date_deadline"`
	CourseLink         string    `json:"course_link"`
	MediaType          MediaType `json:"media_type"`
	MediaLink          string    `json:"media_link"`
	Status             Status    `json:"status"`
	AssignedProfessors []string  `json:"assigned_professors"`
}

func (p Pack) IsActive() bool { return p.Status == StatusActive }

// RegistrationOpen reports whether now is before the registration deadline.
func (p Pack) RegistrationOpen(now time.Time) bool {
	return now.Before(p.DateDeadline.Time)
}

// Started reports whether the course has begun, i.e. its link may be shown.
func (p Pack) Started(now time.Time) bool {
	return !now.Before(p.DateStart.Time)
}

func (p Pack) HasProfessor(id string) bool {
	for _, pid := range p.AssignedProfessors {
		if pid == id {
			return true
		}
	}
	return false
}

// Countdown is the time left before a registration deadline.
type Countdown struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Expired bool `json:"expired"`
}

// Countdown returns the time left until the registration deadline, zeroed once passed.
func (p Pack) Countdown(now time.Time) Countdown {
	left := p.DateDeadline.Sub(now)
	if left <= 0 {
		return Countdown{Expired: true}
	}
	secs := int(left / time.Second)
	return Countdown{
		Days:    secs / 86400,
		Hours:   secs % 86400 / 3600,
		Minutes: secs % 3600 / 60,
		Seconds: secs % 60,
	}
}

// PublicPack is a pack as shown on the landing page.
type PublicPack struct {
	ID               string    `json:"id"`
	Code             string    `json:"code"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	DateStart        core.Date `json:"date_start"`
	DateEnd          core.Date `json:"date_end"`
	DateDeadline     core.Date `json:"date_deadline"`
	MediaType        MediaType `json:"media_type"`
	MediaLink        string    `json:"media_link"`
	RegistrationOpen bool      `json:"registration_open"`
	Countdown        Countdown `json:"countdown"`
}

func (p Pack) Public(now time.Time) PublicPack {
	return PublicPack{
		ID:               p.ID,
		Code:             p.Code,
		Title:            p.Title,
		Description:      p.Description,
		DateStart:        p.DateStart,
		DateEnd:          p.DateEnd,
		DateDeadline:     p.DateDeadline,
		MediaType:        p.MediaType,
		MediaLink:        p.MediaLink,
		RegistrationOpen: p.RegistrationOpen(now),
		Countdown:        p.Countdown(now),
	}
}

// NewPack contains what an admin provides to create or update a pack.
type NewPack struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	DateStart    core.Date `json:"date_start"`
	DateEnd      core.Date `json:"date_end"`
	DateDeadline core.Date `json:"date_deadline"`
	CourseLink   string    `json:"course_link" validate:"omitempty,url"`
	MediaType    MediaType `json:"media_type" validate:"required,oneof=video image"`
	MediaLink    string    `json:"media_link" validate:"omitempty,url"`
	Status       Status    `json:"status" validate:"required,oneof=active inactive"`
}

func (np *NewPack) Clean() {
	np.Title = core.CleanString(np.Title)
	np.Description = core.CleanString(np.Description)
	np.CourseLink = core.CleanString(np.CourseLink)
	np.MediaLink = core.CleanString(np.MediaLink)
	if np.MediaType == "" {
		np.MediaType = MediaVideo
	}
	if np.Status == "" {
		np.Status = StatusActive
	}
}

type QueryFilter struct {
	Search      string `query:"search"`
	Status      Status `query:"status"`
	ProfessorID string `query:"professor"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Match applies AND on the set filter fields. Search matches code or title.
func (qf QueryFilter) Match(p Pack) bool {
	if qf.Status != "" && p.Status != qf.Status {
		return false
	}
	if qf.ProfessorID != "" && !p.HasProfessor(qf.ProfessorID) {
		return false
	}
	if qf.Search != "" {
		return core.ContainsFold(p.Code, qf.Search) || core.ContainsFold(p.Title, qf.Search)
	}
	return true
}
