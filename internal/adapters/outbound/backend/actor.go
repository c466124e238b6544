package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sufield/yummy/internal/debug"
	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/logging"
	"github.com/sufield/yummy/internal/ports"
)

// Request headers.
const (
	HeaderSender     = "X-Yummy-Sender"
	HeaderPublicKey  = "X-Yummy-Public-Key"
	HeaderSignature  = "X-Yummy-Signature"
	HeaderDelegation = "X-Yummy-Delegation"
	HeaderRequestID  = "X-Request-Id"
)

const maxReplyBytes = 4 << 20

// clientCarrier is implemented by identities that bring their own transport,
// such as SPIFFE identities that authenticate with mTLS.
type clientCarrier interface {
	HTTPClient() *http.Client
}

// Factory creates actors bound to one gateway host.
type Factory struct {
	host   string
	client *http.Client
	log    zerolog.Logger
}

var _ ports.ActorFactory = (*Factory)(nil)

type Option func(*Factory)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Factory) { f.client = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(f *Factory) { f.log = l }
}

// NewFactory validates host, which must be an absolute http(s) URL.
func NewFactory(host string, opts ...Option) (*Factory, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse backend host: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("backend host must be an http(s) URL, got %q", host)
	}
	f := &Factory{
		host:   strings.TrimRight(host, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
		log:    logging.Component("backend"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// CreateActor binds an actor to canisterID and the identity in opts.
// A nil identity makes anonymous calls.
func (f *Factory) CreateActor(ctx context.Context, canisterID string, opts ports.ActorOptions) (ports.Actor, error) {
	if canisterID == "" {
		return nil, fmt.Errorf("canister id is required")
	}
	client := f.client
	if cc, ok := opts.Identity.(clientCarrier); ok {
		client = cc.HTTPClient()
	}
	return &Actor{
		host:       f.host,
		canisterID: canisterID,
		identity:   opts.Identity,
		client:     client,
		log:        f.log.With().Str("canister", canisterID).Logger(),
	}, nil
}

// Actor calls one backend canister as one identity.
type Actor struct {
	host       string
	canisterID string
	identity   ports.Identity
	client     *http.Client
	log        zerolog.Logger
}

var _ ports.Actor = (*Actor)(nil)

// Principal returns the identity's principal, or "" for anonymous actors.
func (a *Actor) Principal() string {
	if a.identity == nil {
		return ""
	}
	return a.identity.Principal()
}

func (a *Actor) GetUserInfo(ctx context.Context) (domain.User, error) {
	var r result[wireUser]
	if err := a.do(ctx, "query", "get_user_info", nil, &r); err != nil {
		return domain.User{}, err
	}
	u, be, err := r.unwrap()
	if err := firstErr("get_user_info", be, err); err != nil {
		return domain.User{}, err
	}
	return u.toDomain(), nil
}

func (a *Actor) CreateUser(ctx context.Context, name string) (uint64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, domain.ErrEmptyName
	}
	var r result[uint64]
	if err := a.do(ctx, "call", "create_user", map[string]any{"name": name}, &r); err != nil {
		return 0, err
	}
	idx, be, err := r.unwrap()
	if err := firstErr("create_user", be, err); err != nil {
		return 0, err
	}
	return idx, nil
}

func (a *Actor) UpdateUsername(ctx context.Context, index uint64, name string) (domain.User, error) {
	var r result[wireUser]
	if err := a.do(ctx, "call", "update_username", map[string]any{"index": index, "name": name}, &r); err != nil {
		return domain.User{}, err
	}
	u, be, err := r.unwrap()
	if err := firstErr("update_username", be, err); err != nil {
		return domain.User{}, err
	}
	return u.toDomain(), nil
}

func (a *Actor) DeleteUser(ctx context.Context) (domain.DeleteResult, error) {
	return a.deleteCall(ctx, "delete_user", nil)
}

func (a *Actor) DeleteRecipe(ctx context.Context, name string) (domain.DeleteResult, error) {
	return a.deleteCall(ctx, "delete_recipe", map[string]any{"name": name})
}

func (a *Actor) RecipesOfType(ctx context.Context, recipeType string) ([]domain.RecipeBrief, error) {
	var wire []wireRecipeBrief
	if err := a.do(ctx, "query", "get_recipes_of_specific_type", map[string]any{"recipes_type": recipeType}, &wire); err != nil {
		return nil, err
	}
	out := make([]domain.RecipeBrief, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toDomain())
	}
	return out, nil
}

func (a *Actor) RecipeNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := a.do(ctx, "query", "get_recipes_names", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (a *Actor) deleteCall(ctx context.Context, method string, arg any) (domain.DeleteResult, error) {
	var r result[string]
	if err := a.do(ctx, "call", method, arg, &r); err != nil {
		return domain.DeleteResult{}, err
	}
	msg, be, err := r.unwrap()
	if err != nil {
		return domain.DeleteResult{}, domain.NewCallError(domain.KindOther, method, err)
	}
	if be != nil {
		return domain.DeleteResult{Err: be}, nil
	}
	return domain.DeleteOk(msg), nil
}

// firstErr turns a decoded Err arm or a decode failure into the returned error.
func firstErr(method string, be *domain.BackendError, err error) error {
	if err != nil {
		return domain.NewCallError(domain.KindOther, method, err)
	}
	if be != nil {
		return be
	}
	return nil
}

// do sends one request and decodes a 2xx reply into out.
func (a *Actor) do(ctx context.Context, kind, method string, arg any, out any) error {
	if debug.Faults.ShouldFailSignature() {
		return domain.NewCallError(domain.KindTransientSignature, method, errors.New(domain.SignatureFailureMessage))
	}

	if arg == nil {
		arg = struct{}{}
	}
	body, err := json.Marshal(arg)
	if err != nil {
		return domain.NewCallError(domain.KindOther, method, fmt.Errorf("encode argument: %w", err))
	}

	endpoint := fmt.Sprintf("%s/api/canister/%s/%s/%s", a.host, url.PathEscape(a.canisterID), kind, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.NewCallError(domain.KindOther, method, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderRequestID, reqID)
	if err := a.authenticate(req, body); err != nil {
		return domain.NewCallError(domain.KindOther, method, err)
	}

	log := a.log.With().Str("method", method).Str("request_id", reqID).Logger()
	log.Debug().Msg("backend request")

	resp, err := a.client.Do(req)
	if err != nil {
		// The transport may already have tagged the failure (mTLS verification).
		return domain.NewCallError(domain.Classify(err), method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return domain.NewCallError(domain.KindOther, method, fmt.Errorf("read reply: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rej := &RejectError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var rb rejectBody
		if json.Unmarshal(data, &rb) == nil && rb.Message != "" {
			rej.Code, rej.Message = rb.Code, rb.Message
		}
		kind := domain.KindOther
		if strings.Contains(rej.Message, domain.SignatureFailureMessage) {
			kind = domain.KindTransientSignature
		}
		log.Debug().Int("status", resp.StatusCode).Str("kind", kind.String()).Msg("backend rejected request")
		return domain.NewCallError(kind, method, rej)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewCallError(domain.KindOther, method, fmt.Errorf("decode reply: %w", err))
	}
	return nil
}

// authenticate sets the sender headers and signs body when the identity can.
func (a *Actor) authenticate(req *http.Request, body []byte) error {
	if a.identity == nil {
		return nil
	}
	req.Header.Set(HeaderSender, a.identity.Principal())

	if s, ok := a.identity.(ports.Signer); ok {
		sig, err := s.Sign(body)
		if err != nil {
			return fmt.Errorf("sign request: %w", err)
		}
		req.Header.Set(HeaderPublicKey, base64.StdEncoding.EncodeToString(s.PublicKey()))
		req.Header.Set(HeaderSignature, base64.StdEncoding.EncodeToString(sig))
	}
	if d, ok := a.identity.(ports.DelegationCarrier); ok {
		if chain := d.Delegation(); len(chain) > 0 {
			req.Header.Set(HeaderDelegation, base64.StdEncoding.EncodeToString(chain))
		}
	}
	return nil
}
