package connection

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yndnr/kvsh/internal/core/domain"
	"github.com/yndnr/kvsh/internal/resp"
)

// Doer executes one command. *Client implements it.
type Doer interface {
	Do(ctx context.Context, args ...string) (resp.Reply, error)
}

// Store maps shell operations onto server commands.
type Store struct {
	doer Doer
}

// NewStore creates a Store issuing commands through d.
func NewStore(d Doer) *Store {
	return &Store{doer: d}
}

// ProbeType runs TYPE key.
func (s *Store) ProbeType(ctx context.Context, key string) (domain.KeyType, error) {
	reply, err := s.do(ctx, "TYPE", key)
	if err != nil {
		return "", err
	}
	str, ok := reply.(resp.String)
	if !ok {
		return "", unexpected("TYPE", reply)
	}
	return domain.KeyType(str), nil
}

// FetchScalar runs GET key.
func (s *Store) FetchScalar(ctx context.Context, key string) (domain.ScalarString, error) {
	reply, err := s.do(ctx, "GET", key)
	if err != nil {
		return domain.ScalarString{}, err
	}
	switch v := reply.(type) {
	case resp.Nil:
		return domain.ScalarString{}, nil
	case resp.String:
		return domain.Str(string(v)), nil
	default:
		return domain.ScalarString{}, unexpected("GET", reply)
	}
}

// FetchFields runs HGETALL key.
func (s *Store) FetchFields(ctx context.Context, key string) (domain.FieldList, error) {
	flat, err := s.stringArray(ctx, "HGETALL", key)
	if err != nil {
		return nil, err
	}
	if len(flat)%2 != 0 {
		return nil, domain.ErrUnexpectedReply.WithDetails("HGETALL reply has an odd number of elements")
	}
	fields := make(domain.FieldList, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		fields = append(fields, domain.Field{Name: flat[i], Value: flat[i+1]})
	}
	return fields, nil
}

// FetchItems runs LRANGE key 0 -1.
func (s *Store) FetchItems(ctx context.Context, key string) (domain.ItemList, error) {
	items, err := s.stringArray(ctx, "LRANGE", key, "0", "-1")
	return domain.ItemList(items), err
}

// FetchMembers runs SMEMBERS key.
func (s *Store) FetchMembers(ctx context.Context, key string) (domain.MemberSet, error) {
	members, err := s.stringArray(ctx, "SMEMBERS", key)
	return domain.MemberSet(members), err
}

// FetchScored runs ZRANGE key 0 -1 WITHSCORES.
func (s *Store) FetchScored(ctx context.Context, key string) (domain.ScoredList, error) {
	flat, err := s.stringArray(ctx, "ZRANGE", key, "0", "-1", "WITHSCORES")
	if err != nil {
		return nil, err
	}
	if len(flat)%2 != 0 {
		return nil, domain.ErrUnexpectedReply.WithDetails("ZRANGE reply has an odd number of elements")
	}
	out := make(domain.ScoredList, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		score, err := strconv.ParseFloat(flat[i+1], 64)
		if err != nil {
			return nil, domain.ErrUnexpectedReply.WithDetails(fmt.Sprintf("invalid score %q", flat[i+1]))
		}
		out = append(out, domain.ScoredMember{Member: flat[i], Score: score})
	}
	return out, nil
}

// ExecuteGeneric sends verb and args unchanged. Server errors come back
// as resp.Error replies.
func (s *Store) ExecuteGeneric(ctx context.Context, verb string, args []string) (resp.Reply, error) {
	reply, err := s.doer.Do(ctx, append([]string{verb}, args...)...)
	if err != nil {
		return nil, domain.ErrStore.WithCause(err)
	}
	return reply, nil
}

// do runs a typed fetch; transport failures and server errors both
// become store errors.
func (s *Store) do(ctx context.Context, args ...string) (resp.Reply, error) {
	reply, err := s.doer.Do(ctx, args...)
	if err != nil {
		return nil, domain.ErrStore.WithCause(err)
	}
	if e, ok := reply.(resp.Error); ok {
		return nil, domain.ErrStore.WithCause(e)
	}
	return reply, nil
}

// stringArray runs a command whose reply is a flat array of strings.
func (s *Store) stringArray(ctx context.Context, args ...string) ([]string, error) {
	reply, err := s.do(ctx, args...)
	if err != nil {
		return nil, err
	}
	if resp.IsNil(reply) {
		return []string{}, nil
	}
	arr, ok := reply.(resp.Array)
	if !ok {
		return nil, unexpected(args[0], reply)
	}
	out := make([]string, len(arr))
	for i, elem := range arr {
		str, ok := elem.(resp.String)
		if !ok {
			return nil, unexpected(args[0], elem)
		}
		out[i] = string(str)
	}
	return out, nil
}

func unexpected(verb string, reply resp.Reply) error {
	return domain.ErrUnexpectedReply.WithDetails(fmt.Sprintf("%s returned %T", verb, reply))
}
