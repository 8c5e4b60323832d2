package dto

import (
	"strconv"
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// PreviewRequest asks for the deadlines of a hypothetical submission.
// SubmittedAt accepts RFC3339 or epoch milliseconds; the handler normalizes
// either form into one instant before the core ever sees it.
type PreviewRequest struct {
	Priority    domain.TicketPriority `json:"priority"`
	SubmittedAt string                `json:"submitted_at"`
}

// ParseInstant normalizes a timestamp string to a single instant: RFC3339
// first, epoch milliseconds as fallback.
func ParseInstant(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(millis).UTC(), nil
}

// ExpectationResponse reports computed deadlines. Tracked is false when the
// priority's SLA is disabled, in which case both deadlines are omitted.
type ExpectationResponse struct {
	Tracked              bool       `json:"tracked"`
	ResponseExpectedBy   *time.Time `json:"response_expected_by,omitempty"`
	ResolutionExpectedBy *time.Time `json:"resolution_expected_by,omitempty"`
}

// NewExpectationResponse maps an optional expectation.
func NewExpectationResponse(expectation *domain.SLAExpectation) ExpectationResponse {
	if expectation == nil {
		return ExpectationResponse{}
	}
	return ExpectationResponse{
		Tracked:              true,
		ResponseExpectedBy:   &expectation.ResponseExpectedBy,
		ResolutionExpectedBy: &expectation.ResolutionExpectedBy,
	}
}

// TicketSLAResponse pairs a ticket summary with its deadlines.
type TicketSLAResponse struct {
	TicketID    string                `json:"ticket_id"`
	ExternalKey string                `json:"external_key"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	SubmittedAt time.Time             `json:"submitted_at"`
	Expectation ExpectationResponse   `json:"expectation"`
}

// PolicyRequest updates one priority's SLA policy.
type PolicyRequest struct {
	ResponseTimeHours   float64 `json:"response_time_hours"`
	ResolutionTimeHours float64 `json:"resolution_time_hours"`
	BusinessHoursOnly   bool    `json:"business_hours_only"`
	Enabled             bool    `json:"enabled"`
}

// BusinessHoursRequest replaces the shared business calendar.
type BusinessHoursRequest struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	WorkingDays []int  `json:"working_days"`
	Timezone    string `json:"timezone"`
}

// SettingsResponse is the full settings snapshot for admins.
type SettingsResponse struct {
	Policies      map[domain.TicketPriority]PolicyRequest `json:"policies"`
	BusinessHours BusinessHoursResponse                   `json:"business_hours"`
	Holidays      []HolidayResponse                       `json:"holidays"`
}

// BusinessHoursResponse mirrors BusinessHoursRequest on reads.
type BusinessHoursResponse struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	WorkingDays []int  `json:"working_days"`
	Timezone    string `json:"timezone"`
}

// HolidayRequest creates a holiday. Date is a plain calendar date.
type HolidayRequest struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	Recurring bool   `json:"recurring"`
}

// HolidayResponse describes a stored holiday.
type HolidayResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Recurring bool   `json:"recurring"`
}

// NewHolidayResponse maps a holiday.
func NewHolidayResponse(h domain.Holiday) HolidayResponse {
	return HolidayResponse{
		ID:        h.ID,
		Name:      h.Name,
		Date:      h.Date.Format("2006-01-02"),
		Recurring: h.IsRecurring,
	}
}

// NewSettingsResponse maps a settings snapshot.
func NewSettingsResponse(settings *domain.SLASettings) SettingsResponse {
	policies := make(map[domain.TicketPriority]PolicyRequest, len(settings.Policies))
	for priority, policy := range settings.Policies {
		policies[priority] = PolicyRequest{
			ResponseTimeHours:   policy.ResponseTimeHours,
			ResolutionTimeHours: policy.ResolutionTimeHours,
			BusinessHoursOnly:   policy.BusinessHoursOnly,
			Enabled:             policy.Enabled,
		}
	}
	days := make([]int, 0, len(settings.BusinessHours.WorkingDays))
	for _, wd := range settings.BusinessHours.WorkingDays {
		days = append(days, int(wd))
	}
	holidays := make([]HolidayResponse, 0, len(settings.BusinessHours.Holidays))
	for _, h := range settings.BusinessHours.Holidays {
		holidays = append(holidays, NewHolidayResponse(h))
	}
	return SettingsResponse{
		Policies: policies,
		BusinessHours: BusinessHoursResponse{
			StartTime:   settings.BusinessHours.StartTime.String(),
			EndTime:     settings.BusinessHours.EndTime.String(),
			WorkingDays: days,
			Timezone:    settings.BusinessHours.Timezone,
		},
		Holidays: holidays,
	}
}

// RegisterAdminRequest creates an administrator account.
type RegisterAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminResponse describes an administrator account.
type AdminResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewAdminResponse maps an admin.
func NewAdminResponse(admin *domain.Admin) AdminResponse {
	return AdminResponse{ID: admin.ID, Name: admin.Name, Email: admin.Email}
}

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the issued token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
