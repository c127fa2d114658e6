package models

import "time"

// Guest represents one invited individual as stored by the guest list
type Guest struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Group       string     `json:"group"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	RSVPStatus  RSVPStatus `json:"rsvp_status"`
	RSVPDate    time.Time  `json:"rsvp_date,omitempty"`
	InvitedDate time.Time  `json:"invited_date"`
}

// RSVPStatus represents the attendance confirmation status
type RSVPStatus string

const (
	RSVPPending  RSVPStatus = "pending"
	RSVPAccepted RSVPStatus = "accepted"
	RSVPDeclined RSVPStatus = "declined"
)

// Directory spelling of each status. Anything the directory reports that is
// neither confirmed nor declined is treated as pending.
const (
	SituacaoConfirmado = "Confirmado"
	SituacaoRecusado   = "Recusado"
	SituacaoPendente   = "Pendente"
)

// StatusFromSituacao maps the directory's situacao column to an RSVPStatus.
func StatusFromSituacao(situacao string) RSVPStatus {
	switch situacao {
	case SituacaoConfirmado:
		return RSVPAccepted
	case SituacaoRecusado:
		return RSVPDeclined
	default:
		return RSVPPending
	}
}

// Situacao returns the directory spelling of the status.
func (s RSVPStatus) Situacao() string {
	switch s {
	case RSVPAccepted:
		return SituacaoConfirmado
	case RSVPDeclined:
		return SituacaoRecusado
	default:
		return SituacaoPendente
	}
}

// GuestGroupEntry is one individual of the group returned by a directory
// search. Attending is the local, user-editable attendance toggle.
type GuestGroupEntry struct {
	Name        string
	Group       string
	PriorStatus RSVPStatus
	Attending   bool
}

// AttendanceRecord is a single attendance decision sent to the directory.
type AttendanceRecord struct {
	Name      string `json:"nomeIndividual"`
	Attending bool   `json:"presente"`
}

// AttendanceSubmission holds exactly one record per guest of the group.
type AttendanceSubmission []AttendanceRecord

// GuestRecord is the directory's JSON representation of a guest.
type GuestRecord struct {
	Name     string `json:"nomeIndividual"`
	Group    string `json:"nomeConvite"`
	Situacao string `json:"situacao"`
}
