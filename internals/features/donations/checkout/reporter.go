package checkout

import helper "k9medics_backend/internals/helpers"

type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneError   Tone = "error"
	ToneSuccess Tone = "success"
)

// View is the text a checkout surface shows for one snapshot.
type View struct {
	Title         string
	Message       string
	AmountLabel   string
	AmountError   string
	EmailError    string
	ShowForm      bool
	SubmitEnabled bool
	SubmitLabel   string
	Loading       bool
	Tone          Tone
}

func Render(s Snapshot) View {
	v := View{
		Title:       "Support K9 Medics",
		AmountError: s.AmountError,
		EmailError:  s.EmailError,
		ShowForm:    s.State.ShowsForm(),
		Tone:        ToneNeutral,
	}
	if s.Amount > 0 {
		v.AmountLabel = helper.FormatMinor(s.Amount, s.Currency)
	}

	switch s.State {
	case StateIdle:
		v.Message = "Choose an amount to continue."
	case StateCreatingSession:
		v.Message = "Preparing secure payment..."
		v.Loading = true
	case StateSessionError:
		v.Message = s.Error
		v.Tone = ToneError
	case StateFormReady:
		v.SubmitEnabled = s.AmountError == ""
	case StateSubmitting:
		v.Message = "Processing your donation..."
		v.Loading = true
	case StateSubmitError:
		v.Message = s.Error
		v.Tone = ToneError
		v.SubmitEnabled = s.AmountError == ""
	case StateSuccess:
		v.Title = "Thank you!"
		v.Message = "Redirecting to your receipt..."
		v.Tone = ToneSuccess
	}

	switch {
	case s.State == StateSubmitting:
		v.SubmitLabel = "Processing..."
	case v.AmountLabel != "":
		v.SubmitLabel = "Donate " + v.AmountLabel
	default:
		v.SubmitLabel = "Donate"
	}
	return v
}
