package domain

// FetchStatus tags the result of one fetch call.
type FetchStatus int

const (
	FetchSuccess FetchStatus = iota + 1
	FetchNoData
	FetchAuthRequired
	FetchTransientError
)

func (s FetchStatus) String() string {
	switch s {
	case FetchSuccess:
		return "success"
	case FetchNoData:
		return "no_data"
	case FetchAuthRequired:
		return "auth_required"
	case FetchTransientError:
		return "transient_error"
	}
	return "unknown"
}

// FetchOutcome is the classified result of fetching report data.
// Payload is only set for FetchSuccess, Detail only for FetchTransientError.
type FetchOutcome struct {
	Status   FetchStatus
	Payload  *SubjectsPayload
	Detail   string
	Attempts int
}

func SuccessOutcome(payload *SubjectsPayload, attempts int) FetchOutcome {
	return FetchOutcome{Status: FetchSuccess, Payload: payload, Attempts: attempts}
}

func NoDataOutcome(attempts int) FetchOutcome {
	return FetchOutcome{Status: FetchNoData, Attempts: attempts}
}

func AuthRequiredOutcome(attempts int) FetchOutcome {
	return FetchOutcome{Status: FetchAuthRequired, Attempts: attempts}
}

func TransientErrorOutcome(detail string, attempts int) FetchOutcome {
	return FetchOutcome{Status: FetchTransientError, Detail: detail, Attempts: attempts}
}

// Err converts a non-success outcome into the matching error.
func (o FetchOutcome) Err() error {
	switch o.Status {
	case FetchSuccess:
		return nil
	case FetchNoData:
		return ErrNoData
	case FetchAuthRequired:
		return ErrAuthRequired
	}
	return &UpstreamError{Detail: o.Detail}
}
