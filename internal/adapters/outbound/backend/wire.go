package backend

import (
	"encoding/json"
	"fmt"

	"github.com/sufield/yummy/internal/domain"
)

// rejectBody is the gateway's error reply.
type rejectBody struct {
	Code    int    `json:"reject_code"`
	Message string `json:"reject_message"`
}

// RejectError is a request the gateway or the backend refused.
type RejectError struct {
	Status  int
	Code    int
	Message string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("rejected (http %d, code %d): %s", e.Status, e.Code, e.Message)
}

// result mirrors {"Ok": T} | {"Err": {"<Kind>": {"msg": "..."}}}.
type result[T any] struct {
	Ok  *T                         `json:"Ok"`
	Err map[string]json.RawMessage `json:"Err"`
}

type errPayload struct {
	Msg string `json:"msg"`
}

// unwrap returns the Ok value, or the Err arm as *domain.BackendError.
func (r result[T]) unwrap() (T, *domain.BackendError, error) {
	var zero T
	switch {
	case r.Ok != nil && r.Err == nil:
		return *r.Ok, nil, nil
	case r.Ok == nil && len(r.Err) == 1:
		for kind, raw := range r.Err {
			var p errPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return zero, nil, fmt.Errorf("decode %s: %w", kind, err)
			}
			return zero, &domain.BackendError{Kind: domain.BackendErrorKind(kind), Msg: p.Msg}, nil
		}
	}
	return zero, nil, domain.ErrMalformedResult
}

type wireUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (u wireUser) toDomain() domain.User {
	return domain.User{ID: u.ID, Name: u.Name}
}

type wireRecipeBrief struct {
	Name      string   `json:"name"`
	Tags      []string `json:"tags"`
	TotalTime int      `json:"total_time"`
	Author    *string  `json:"author"`
}

func (r wireRecipeBrief) toDomain() domain.RecipeBrief {
	b := domain.RecipeBrief{Name: r.Name, Tags: r.Tags, TotalMinutes: r.TotalTime}
	if r.Author != nil {
		b.Author = *r.Author
	}
	return b
}
