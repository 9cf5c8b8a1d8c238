package capability

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"

	mysql "github.com/go-sql-driver/mysql"
	lua "github.com/yuin/gopher-lua"

	"github.com/mglen/authprobe/internal/transport"
)

// MySQLModule exposes mysql_connect, a reachability and credential probe
// against a MySQL server.
//
// The result is a bare boolean, but unlike a plain connectivity check the
// failure reason (unreachable host vs. rejected credentials) is still
// recorded in the error slot for last_err().
type MySQLModule struct{}

// NewMySQLModule creates a new MySQL module.
func NewMySQLModule() *MySQLModule {
	return &MySQLModule{}
}

// Name returns the module name.
func (m *MySQLModule) Name() string {
	return "mysql"
}

// Register registers the module into the Lua state.
func (m *MySQLModule) Register(L *lua.LState, ctx *Context) error {
	L.SetGlobal("mysql_connect", L.NewFunction(m.connect(ctx)))
	return nil
}

// mysql_connect(host, port, user, password) -> bool
func (m *MySQLModule) connect(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 4)
		host := L.CheckString(1)
		port := L.CheckInt(2)
		user := L.CheckString(3)
		password := L.CheckString(4)

		if port < 1 || port > 65535 {
			L.ArgError(2, "port must be in [1,65535]")
		}

		cfg := mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
		cfg.User = user
		cfg.Passwd = password
		cfg.Timeout = transport.DefaultTimeout

		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			L.Push(ctx.SetError(fmt.Errorf("invalid mysql configuration: %w", err)))
			return 1
		}

		db := sql.OpenDB(connector)
		defer db.Close()

		if err := db.Ping(); err != nil {
			ctx.SetError(fmt.Errorf("mysql connection failed: %w", err))
			L.Push(lua.LFalse)
			return 1
		}

		L.Push(lua.LTrue)
		return 1
	}
}
