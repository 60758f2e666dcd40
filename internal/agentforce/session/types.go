package session

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/agentbridge/agentbridge/internal/agentforce/auth"
	"github.com/agentbridge/agentbridge/internal/common/apperrors"
)

// Session is the handle for an ongoing conversation with an agent. The ID is
// opaque and issued by the agent platform; AgentID and Mode record the
// binding that produced it.
type Session struct {
	ID      string    `json:"sessionId"`
	AgentID string    `json:"agentId"`
	Mode    auth.Mode `json:"mode"`
}

// MessageTypeText is the only chunk type the streaming transport requests.
const MessageTypeText = "Text"

// Message is a single chat message addressed to an active session.
// Constructed per call, never stored.
type Message struct {
	SequenceID int    `json:"sequenceId" validate:"gte=0"`
	Type       string `json:"type" validate:"required,oneof=Text"`
	Text       string `json:"text" validate:"notblank"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// validator's required tag accepts whitespace-only strings
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate checks the message invariants: a non-negative sequence id and
// non-empty trimmed text. Violations are reported as ErrValidation before
// any network call is made.
func (m *Message) Validate() apperrors.Error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ErrValidation.Err(err)
	}
	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "SequenceID":
			return ErrValidation.Msg("sequenceId must be a non-negative number")
		case "Text":
			return ErrValidation.Msg("message text must not be empty")
		case "Type":
			return ErrValidation.Msg(fmt.Sprintf("unsupported message type %q", m.Type))
		}
	}
	return ErrValidation.Err(err)
}

// sessionCreateRequest is the body posted to open a session against an agent.
type sessionCreateRequest struct {
	ExternalSessionKey    string                `json:"externalSessionKey"`
	InstanceConfig        instanceConfig        `json:"instanceConfig"`
	StreamingCapabilities streamingCapabilities `json:"streamingCapabilities"`
	BypassUser            bool                  `json:"bypassUser"`
}

// instanceConfig tells the platform which tenant endpoint to use for
// callbacks, independent of the base URL the session was created through.
type instanceConfig struct {
	Endpoint string `json:"endpoint"`
}

type streamingCapabilities struct {
	ChunkTypes []string `json:"chunkTypes"`
}

// messageSendRequest is the body posted to the streaming message endpoint.
type messageSendRequest struct {
	Message Message `json:"message"`
}
