package resptest

import (
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/yndnr/kvsh/internal/resp"
)

const errWrongType = "WRONGTYPE Operation against a key holding the wrong kind of value"

type zmember struct {
	member string
	score  float64
}

// entry holds exactly one of the typed values.
type entry struct {
	kind   string // string, hash, list, set, zset
	str    string
	hash   [][2]string
	list   []string
	set    map[string]struct{}
	sorted []zmember
}

// Keyspace is an in-memory Handler with typed keys. It is safe for
// concurrent use.
type Keyspace struct {
	mu       sync.Mutex
	keys     map[string]*entry
	username string
	password string
}

// NewKeyspace creates an empty keyspace.
func NewKeyspace() *Keyspace {
	return &Keyspace{keys: make(map[string]*entry)}
}

// RequireAuth makes AUTH fail unless it carries these credentials. An
// empty username accepts the single-argument AUTH form.
func (k *Keyspace) RequireAuth(username, password string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.username, k.password = username, password
}

// Set stores a string value.
func (k *Keyspace) Set(key, value string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[key] = &entry{kind: "string", str: value}
}

// HSet stores hash fields given as name, value pairs, in order.
func (k *Keyspace) HSet(key string, pairs ...string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.hset(k.typed(key, "hash"), pairs)
}

// RPush appends list items.
func (k *Keyspace) RPush(key string, items ...string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e := k.typed(key, "list")
	e.list = append(e.list, items...)
}

// SAdd adds set members.
func (k *Keyspace) SAdd(key string, members ...string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	sadd(k.typed(key, "set"), members)
}

// ZAdd adds a sorted set member or updates its score.
func (k *Keyspace) ZAdd(key string, score float64, member string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	zadd(k.typed(key, "zset"), score, member)
}

// hset returns the number of new fields.
func (k *Keyspace) hset(e *entry, pairs []string) int {
	var added int
next:
	for i := 0; i+1 < len(pairs); i += 2 {
		for j := range e.hash {
			if e.hash[j][0] == pairs[i] {
				e.hash[j][1] = pairs[i+1]
				continue next
			}
		}
		e.hash = append(e.hash, [2]string{pairs[i], pairs[i+1]})
		added++
	}
	return added
}

func sadd(e *entry, members []string) int {
	var added int
	for _, m := range members {
		if _, ok := e.set[m]; !ok {
			e.set[m] = struct{}{}
			added++
		}
	}
	return added
}

func zadd(e *entry, score float64, member string) int {
	for i := range e.sorted {
		if e.sorted[i].member == member {
			e.sorted[i].score = score
			sortMembers(e.sorted)
			return 0
		}
	}
	e.sorted = append(e.sorted, zmember{member: member, score: score})
	sortMembers(e.sorted)
	return 1
}

// SetType stores a key of a type the keyspace cannot serve, such as
// "stream". TYPE reports it; every other read fails with WRONGTYPE.
func (k *Keyspace) SetType(key, kind string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[key] = &entry{kind: kind}
}

// typed returns the entry for key, creating one of kind if absent or
// of another kind. Callers hold k.mu.
func (k *Keyspace) typed(key, kind string) *entry {
	if e, ok := k.keys[key]; ok && e.kind == kind {
		return e
	}
	e := &entry{kind: kind}
	if kind == "set" {
		e.set = make(map[string]struct{})
	}
	k.keys[key] = e
	return e
}

func sortMembers(ms []zmember) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].score != ms[j].score {
			return ms[i].score < ms[j].score
		}
		return ms[i].member < ms[j].member
	})
}

// ServeRESP implements Handler.
func (k *Keyspace) ServeRESP(args []string) resp.Reply {
	k.mu.Lock()
	defer k.mu.Unlock()

	name := strings.ToUpper(args[0])
	args = args[1:]

	switch name {
	case "PING":
		if len(args) > 0 {
			return resp.String(args[0])
		}
		return resp.String("PONG")
	case "ECHO":
		if len(args) != 1 {
			return arity(name)
		}
		return resp.String(args[0])
	case "AUTH":
		return k.auth(args)
	case "SELECT":
		if len(args) != 1 {
			return arity(name)
		}
		if _, err := strconv.Atoi(args[0]); err != nil {
			return resp.Error("ERR invalid DB index")
		}
		return resp.String("OK")
	case "DBSIZE":
		return resp.Integer(len(k.keys))
	case "TYPE":
		if len(args) != 1 {
			return arity(name)
		}
		if e, ok := k.keys[args[0]]; ok {
			return resp.String(e.kind)
		}
		return resp.String("none")
	case "SET":
		if len(args) != 2 {
			return arity(name)
		}
		k.keys[args[0]] = &entry{kind: "string", str: args[1]}
		return resp.String("OK")
	case "DEL":
		var n int
		for _, key := range args {
			if _, ok := k.keys[key]; ok {
				delete(k.keys, key)
				n++
			}
		}
		return resp.Integer(n)
	case "EXISTS":
		var n int
		for _, key := range args {
			if _, ok := k.keys[key]; ok {
				n++
			}
		}
		return resp.Integer(n)
	case "HSET":
		if len(args) < 3 || len(args)%2 == 0 {
			return arity(name)
		}
		e, errReply := k.writable(args[0], "hash")
		if errReply != nil {
			return errReply
		}
		return resp.Integer(k.hset(e, args[1:]))
	case "RPUSH":
		if len(args) < 2 {
			return arity(name)
		}
		e, errReply := k.writable(args[0], "list")
		if errReply != nil {
			return errReply
		}
		e.list = append(e.list, args[1:]...)
		return resp.Integer(len(e.list))
	case "SADD":
		if len(args) < 2 {
			return arity(name)
		}
		e, errReply := k.writable(args[0], "set")
		if errReply != nil {
			return errReply
		}
		return resp.Integer(sadd(e, args[1:]))
	case "ZADD":
		if len(args) < 3 || len(args)%2 == 0 {
			return arity(name)
		}
		e, errReply := k.writable(args[0], "zset")
		if errReply != nil {
			return errReply
		}
		var added int
		for i := 1; i < len(args); i += 2 {
			score, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return resp.Error("ERR value is not a valid float")
			}
			added += zadd(e, score, args[i+1])
		}
		return resp.Integer(added)
	case "GET":
		if len(args) != 1 {
			return arity(name)
		}
		return k.get(args[0])
	case "HGETALL":
		if len(args) != 1 {
			return arity(name)
		}
		return k.hgetall(args[0])
	case "LRANGE":
		if len(args) != 3 {
			return arity(name)
		}
		return k.lrange(args[0], args[1], args[2])
	case "SMEMBERS":
		if len(args) != 1 {
			return arity(name)
		}
		return k.smembers(args[0])
	case "ZRANGE":
		if len(args) < 3 {
			return arity(name)
		}
		return k.zrange(args[0], args[1], args[2], args[3:])
	case "SCAN":
		return k.scan(args)
	default:
		return resp.Error("ERR unknown command '" + strings.ToLower(name) + "'")
	}
}

func arity(name string) resp.Reply {
	return resp.Error("ERR wrong number of arguments for '" + strings.ToLower(name) + "' command")
}

func (k *Keyspace) auth(args []string) resp.Reply {
	var user, pass string
	switch len(args) {
	case 1:
		pass = args[0]
	case 2:
		user, pass = args[0], args[1]
	default:
		return arity("AUTH")
	}
	if k.password == "" {
		return resp.Error("ERR AUTH called without any password configured")
	}
	if pass != k.password || (user != "" && user != k.username) {
		return resp.Error("WRONGPASS invalid username-password pair or user is disabled.")
	}
	return resp.String("OK")
}

func (k *Keyspace) lookup(key, kind string) (*entry, resp.Reply) {
	e, ok := k.keys[key]
	if !ok {
		return nil, nil
	}
	if e.kind != kind {
		return nil, resp.Error(errWrongType)
	}
	return e, nil
}

// writable returns the entry for key, creating it when absent. A key
// of another type yields a WRONGTYPE reply.
func (k *Keyspace) writable(key, kind string) (*entry, resp.Reply) {
	if e, ok := k.keys[key]; ok && e.kind != kind {
		return nil, resp.Error(errWrongType)
	}
	return k.typed(key, kind), nil
}

func (k *Keyspace) get(key string) resp.Reply {
	e, errReply := k.lookup(key, "string")
	if errReply != nil {
		return errReply
	}
	if e == nil {
		return resp.Nil{}
	}
	return resp.String(e.str)
}

func (k *Keyspace) hgetall(key string) resp.Reply {
	e, errReply := k.lookup(key, "hash")
	if errReply != nil {
		return errReply
	}
	out := resp.Array{}
	if e != nil {
		for _, kv := range e.hash {
			out = append(out, resp.String(kv[0]), resp.String(kv[1]))
		}
	}
	return out
}

func (k *Keyspace) lrange(key, startArg, stopArg string) resp.Reply {
	e, errReply := k.lookup(key, "list")
	if errReply != nil {
		return errReply
	}
	start, err1 := strconv.Atoi(startArg)
	stop, err2 := strconv.Atoi(stopArg)
	if err1 != nil || err2 != nil {
		return resp.Error("ERR value is not an integer or out of range")
	}
	if e == nil {
		return resp.Array{}
	}
	return stringArray(window(e.list, start, stop))
}

func (k *Keyspace) smembers(key string) resp.Reply {
	e, errReply := k.lookup(key, "set")
	if errReply != nil {
		return errReply
	}
	members := []string{}
	if e != nil {
		for m := range e.set {
			members = append(members, m)
		}
		sort.Strings(members)
	}
	return stringArray(members)
}

func (k *Keyspace) zrange(key, startArg, stopArg string, opts []string) resp.Reply {
	e, errReply := k.lookup(key, "zset")
	if errReply != nil {
		return errReply
	}
	start, err1 := strconv.Atoi(startArg)
	stop, err2 := strconv.Atoi(stopArg)
	if err1 != nil || err2 != nil {
		return resp.Error("ERR value is not an integer or out of range")
	}
	withScores := len(opts) == 1 && strings.EqualFold(opts[0], "WITHSCORES")
	if len(opts) > 0 && !withScores {
		return resp.Error("ERR syntax error")
	}
	if e == nil {
		return resp.Array{}
	}

	lo, hi := bounds(len(e.sorted), start, stop)
	out := resp.Array{}
	for i := lo; i < hi; i++ {
		out = append(out, resp.String(e.sorted[i].member))
		if withScores {
			out = append(out, resp.String(strconv.FormatFloat(e.sorted[i].score, 'g', -1, 64)))
		}
	}
	return out
}

// scan returns every matching key in one page with cursor 0. COUNT is
// accepted but only bounds the page size.
func (k *Keyspace) scan(args []string) resp.Reply {
	if len(args) < 1 {
		return arity("SCAN")
	}
	if _, err := strconv.ParseUint(args[0], 10, 64); err != nil {
		return resp.Error("ERR invalid cursor")
	}

	pattern := "*"
	count := -1
	for i := 1; i < len(args); i += 2 {
		if i+1 >= len(args) {
			return resp.Error("ERR syntax error")
		}
		switch strings.ToUpper(args[i]) {
		case "MATCH":
			pattern = args[i+1]
		case "COUNT":
			n, err := strconv.Atoi(args[i+1])
			if err != nil || n < 1 {
				return resp.Error("ERR value is not an integer or out of range")
			}
			count = n
		default:
			return resp.Error("ERR syntax error")
		}
	}

	keys := []string{}
	for key := range k.keys {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	if count > 0 && len(keys) > count {
		keys = keys[:count]
	}
	return resp.Array{resp.String("0"), stringArray(keys)}
}

func stringArray(items []string) resp.Array {
	out := make(resp.Array, len(items))
	for i, s := range items {
		out[i] = resp.String(s)
	}
	return out
}

// window applies inclusive start/stop indexes with negative values
// counting from the end.
func window(items []string, start, stop int) []string {
	lo, hi := bounds(len(items), start, stop)
	return items[lo:hi]
}

func bounds(n, start, stop int) (int, int) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0
	}
	return start, stop + 1
}
