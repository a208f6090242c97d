package homies

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/homies/internal/domain"
	svcErr "github.com/oggyb/homies/internal/errors"
	"github.com/oggyb/homies/internal/visibility"
)

// Request fields.
const (
	fieldActor     = "actor_user_id"
	fieldTarget    = "target_user_id"
	fieldLinkType  = "link_type"
	fieldSearch    = "search"
	fieldPageToken = "page_token"
	fieldPageSize  = "page_size"
	fieldText      = "text"
)

// API adapts Service to HomiesServer. Validation errors and core errors
// leave through svcErr.Map.
type API struct {
	svc *Service
}

func NewAPI(svc *Service) *API {
	return &API{svc: svc}
}

var _ HomiesServer = (*API)(nil)

func (a *API) AddFavorite(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return a.action(ctx, req, a.svc.AddFavorite)
}

func (a *API) RemoveFavorite(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return a.action(ctx, req, a.svc.RemoveFavorite)
}

func (a *API) Block(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return a.action(ctx, req, a.svc.Block)
}

func (a *API) RemoveMatched(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return a.action(ctx, req, a.svc.RemoveMatched)
}

func (a *API) action(ctx context.Context, req *structpb.Struct, do func(context.Context, uint64, uint64) (ActionResult, error)) (*structpb.Struct, error) {
	actorID, targetID, err := pairFields(req)
	if err != nil {
		return nil, err
	}
	res, err := do(ctx, actorID, targetID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return newStruct(map[string]any{
		"connection_id": strconv.FormatUint(res.ConnectionID, 10),
		"relationship":  res.Relationship.String(),
		"my_status":     string(res.MyStatus),
		"their_status":  string(res.TheirStatus),
		"matched":       res.Matched(),
	})
}

func (a *API) NextCandidate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actorID, err := idField(req, fieldActor)
	if err != nil {
		return nil, err
	}
	card, err := a.svc.NextCandidate(ctx, actorID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return newStruct(map[string]any{
		"user":  viewMap(card.User),
		"score": card.Score,
	})
}

// ListLinked serves both the plain and the paged list: a page is returned
// when page_token or page_size is present.
func (a *API) ListLinked(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actorID, err := idField(req, fieldActor)
	if err != nil {
		return nil, err
	}
	linkType, err := domain.ParseLinkType(stringField(req, fieldLinkType))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	search := stringField(req, fieldSearch)

	fields := req.GetFields()
	_, hasToken := fields[fieldPageToken]
	_, hasSize := fields[fieldPageSize]
	if !hasToken && !hasSize {
		views, err := a.svc.ListLinked(ctx, actorID, linkType, search)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		return newStruct(map[string]any{"users": viewList(views)})
	}

	size, err := pageSizeField(req)
	if err != nil {
		return nil, err
	}
	page, err := a.svc.ListLinkedPage(ctx, actorID, linkType, search, stringField(req, fieldPageToken), size)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return newStruct(map[string]any{
		"users":           viewList(page.Items),
		"next_page_token": page.NextToken,
	})
}

func (a *API) CountAdmirers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actorID, err := idField(req, fieldActor)
	if err != nil {
		return nil, err
	}
	n, err := a.svc.CountAdmirers(ctx, actorID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return newStruct(map[string]any{"count": n})
}

func (a *API) GetHomie(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actorID, targetID, err := pairFields(req)
	if err != nil {
		return nil, err
	}
	h, err := a.svc.GetHomie(ctx, actorID, targetID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	msgs := make([]any, 0, len(h.Messages))
	for _, m := range h.Messages {
		msgs = append(msgs, messageMap(m))
	}
	return newStruct(map[string]any{
		"user":                viewMap(h.View),
		"messages":            msgs,
		"has_unread_messages": h.HasUnreadMessages,
	})
}

func (a *API) SendMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actorID, targetID, err := pairFields(req)
	if err != nil {
		return nil, err
	}
	msg, err := a.svc.SendMessage(ctx, actorID, targetID, stringField(req, fieldText))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return newStruct(map[string]any{"message": messageMap(msg)})
}

func (a *API) MarkRead(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actorID, targetID, err := pairFields(req)
	if err != nil {
		return nil, err
	}
	changed, err := a.svc.MarkRead(ctx, actorID, targetID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return newStruct(map[string]any{"changed": changed})
}

// --- helpers ---

func pairFields(req *structpb.Struct) (actorID, targetID uint64, err error) {
	if actorID, err = idField(req, fieldActor); err != nil {
		return 0, 0, err
	}
	if targetID, err = idField(req, fieldTarget); err != nil {
		return 0, 0, err
	}
	return actorID, targetID, nil
}

// idField reads a user id sent either as a decimal string or as a number.
func idField(req *structpb.Struct, name string) (uint64, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, svcErr.InvalidArgument(name + " is required")
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		id, err := strconv.ParseUint(k.StringValue, 10, 64)
		if err == nil && id > 0 {
			return id, nil
		}
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n >= 1 && n == math.Trunc(n) && n <= 1<<53 {
			return uint64(n), nil
		}
	}
	return 0, svcErr.InvalidArgument(name + " must be a valid uint64")
}

// pageSizeField reads page_size as a whole number in [0, MaxPageSize].
// Absent is 0, the server default.
func pageSizeField(req *structpb.Struct) (int, error) {
	v, ok := req.GetFields()[fieldPageSize]
	if !ok {
		return 0, nil
	}
	var n float64
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n = k.NumberValue
	case *structpb.Value_StringValue:
		parsed, err := strconv.ParseUint(k.StringValue, 10, 32)
		if err != nil {
			return 0, svcErr.InvalidArgument(fieldPageSize + " must be a whole number")
		}
		n = float64(parsed)
	default:
		return 0, svcErr.InvalidArgument(fieldPageSize + " must be a whole number")
	}
	if n < 0 || n != math.Trunc(n) || n > MaxPageSize {
		return 0, svcErr.InvalidArgument(fmt.Sprintf("%s must be between 0 and %d", fieldPageSize, MaxPageSize))
	}
	return int(n), nil
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return s, nil
}

func viewList(views []visibility.View) []any {
	out := make([]any, 0, len(views))
	for _, v := range views {
		out = append(out, viewMap(v))
	}
	return out
}

func viewMap(v visibility.View) map[string]any {
	return map[string]any{
		"id":           strconv.FormatUint(v.ID, 10),
		"first_name":   v.FirstName,
		"last_name":    v.LastName,
		"email":        v.Email,
		"phone":        v.Phone,
		"age":          v.Age,
		"gender":       string(v.Gender),
		"city":         v.Location.City,
		"state":        v.Location.State,
		"bio":          v.Bio,
		"preferences":  preferencesMap(v.Preferences),
		"relationship": v.Relationship.String(),
		"my_status":    string(v.MyStatus),
		"their_status": string(v.TheirStatus),
		"is_matched":   v.IsMatched,
	}
}

// preferencesMap leaves unset preferences out.
func preferencesMap(p domain.Preferences) map[string]any {
	m := map[string]any{}
	setBool := func(key string, v *bool) {
		if v != nil {
			m[key] = *v
		}
	}
	setBool("smoking", p.Smoking)
	setBool("drinking", p.Drinking)
	setBool("pets", p.Pets)

	if r := p.Rent; r != nil {
		rent := map[string]any{}
		for key, v := range map[string]*float64{"exact": r.Exact, "min": r.Min, "max": r.Max} {
			if v != nil {
				rent[key] = *v
			}
		}
		m["rent"] = rent
	}
	if r := p.Age; r != nil {
		age := map[string]any{}
		if r.Min != nil {
			age["min"] = *r.Min
		}
		if r.Max != nil {
			age["max"] = *r.Max
		}
		m["age"] = age
	}
	if len(p.Genders) > 0 {
		genders := make([]any, 0, len(p.Genders))
		for _, g := range p.Genders {
			genders = append(genders, string(g))
		}
		m["genders"] = genders
	}
	return m
}

func messageMap(m domain.Message) map[string]any {
	return map[string]any{
		"id":        m.ID.String(),
		"sender_id": strconv.FormatUint(m.SenderID, 10),
		"text":      m.Text,
		"sent_at":   m.SentAt.Format(time.RFC3339Nano),
	}
}
