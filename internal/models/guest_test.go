package models

import "testing"

func TestStatusFromSituacao(t *testing.T) {
	tests := []struct {
		situacao string
		want     RSVPStatus
	}{
		{situacao: "Confirmado", want: RSVPAccepted},
		{situacao: "Recusado", want: RSVPDeclined},
		{situacao: "Pendente", want: RSVPPending},
		{situacao: "confirmado", want: RSVPPending},
		{situacao: "", want: RSVPPending},
	}
	for _, tt := range tests {
		if got := StatusFromSituacao(tt.situacao); got != tt.want {
			t.Fatalf("StatusFromSituacao(%q) = %q, want %q", tt.situacao, got, tt.want)
		}
	}
}

func TestRSVPStatusSituacaoRoundTrip(t *testing.T) {
	for _, status := range []RSVPStatus{RSVPAccepted, RSVPDeclined, RSVPPending} {
		if got := StatusFromSituacao(status.Situacao()); got != status {
			t.Fatalf("round trip of %q = %q", status, got)
		}
	}
}
