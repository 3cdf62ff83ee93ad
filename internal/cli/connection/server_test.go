package connection

import (
	"strings"
	"testing"

	"github.com/yndnr/kvsh/internal/resp"
	"github.com/yndnr/kvsh/internal/resp/resptest"
)

func newTestServer(t *testing.T, h func(args []string) resp.Reply) *resptest.Server {
	t.Helper()
	return resptest.NewServer(t, resptest.HandlerFunc(h))
}

// memoryHandler serves a tiny fixed data set.
func memoryHandler(args []string) resp.Reply {
	switch strings.ToUpper(args[0]) {
	case "PING":
		return resp.String("PONG")
	case "AUTH", "SELECT":
		return resp.String("OK")
	case "TYPE":
		switch args[1] {
		case "s":
			return resp.String("string")
		case "h":
			return resp.String("hash")
		case "l":
			return resp.String("list")
		case "st":
			return resp.String("set")
		case "z":
			return resp.String("zset")
		}
		return resp.String("none")
	case "GET":
		if args[1] == "s" {
			return resp.String("hello")
		}
		if args[1] == "h" {
			return resp.Error("WRONGTYPE Operation against a key holding the wrong kind of value")
		}
		return resp.Nil{}
	case "HGETALL":
		return resp.Array{resp.String("name"), resp.String("alice"), resp.String("age"), resp.String("30")}
	case "LRANGE":
		return resp.Array{resp.String("x"), resp.String("y")}
	case "SMEMBERS":
		if args[1] == "missing" {
			return resp.Array{}
		}
		return resp.Array{resp.String("m1")}
	case "ZRANGE":
		return resp.Array{resp.String("a"), resp.String("1"), resp.String("b"), resp.String("-inf")}
	case "DBSIZE":
		return resp.Integer(4)
	}
	return resp.Error("ERR unknown command '" + args[0] + "'")
}
