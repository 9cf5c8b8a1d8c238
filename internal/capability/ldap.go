package capability

import (
	"errors"
	"fmt"

	ldap "github.com/go-ldap/ldap/v3"
	lua "github.com/yuin/gopher-lua"
)

// ldapConn is the subset of the directory connection the module uses.
type ldapConn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// LDAPModule exposes ldap_bind, ldap_escape and ldap_search_bind.
//
// Bind rejection (invalid credentials) is an ordinary false result;
// connection and protocol faults are operational failures reported via
// the error slot.
type LDAPModule struct {
	dial func(url string) (ldapConn, error)
}

// NewLDAPModule creates a new LDAP module.
func NewLDAPModule() *LDAPModule {
	return &LDAPModule{
		dial: func(url string) (ldapConn, error) {
			return ldap.DialURL(url)
		},
	}
}

// Name returns the module name.
func (m *LDAPModule) Name() string {
	return "ldap"
}

// Register registers the module into the Lua state.
func (m *LDAPModule) Register(L *lua.LState, ctx *Context) error {
	L.SetGlobal("ldap_bind", L.NewFunction(m.bind(ctx)))
	L.SetGlobal("ldap_escape", L.NewFunction(m.escape))
	L.SetGlobal("ldap_search_bind", L.NewFunction(m.searchBind(ctx)))
	return nil
}

// ldap_bind(url, dn, password) -> bool
func (m *LDAPModule) bind(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 3)
		url := L.CheckString(1)
		dn := L.CheckString(2)
		password := L.CheckString(3)

		conn, err := m.dial(url)
		if err != nil {
			L.Push(ctx.SetError(fmt.Errorf("ldap connection failed: %w", err)))
			return 1
		}
		defer conn.Close()

		ok, err := tryBind(conn, dn, password)
		if err != nil {
			L.Push(ctx.SetError(err))
			return 1
		}

		L.Push(lua.LBool(ok))
		return 1
	}
}

// ldap_escape(text) -> text
func (m *LDAPModule) escape(L *lua.LState) int {
	checkArity(L, 1)
	L.Push(lua.LString(ldap.EscapeFilter(L.CheckString(1))))
	return 1
}

// ldap_search_bind(url, searchUser, searchPw, baseDn, user, password) -> bool
//
// Binds as the search user, looks the login user up by uid equality in the
// subtree under baseDn, then binds again as the first matching entry's DN.
// Zero matches yield false without a third bind.
func (m *LDAPModule) searchBind(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 6)
		url := L.CheckString(1)
		searchUser := L.CheckString(2)
		searchPw := L.CheckString(3)
		baseDn := L.CheckString(4)
		user := L.CheckString(5)
		password := L.CheckString(6)

		conn, err := m.dial(url)
		if err != nil {
			L.Push(ctx.SetError(fmt.Errorf("ldap connection failed: %w", err)))
			return 1
		}
		defer conn.Close()

		ok, err := tryBind(conn, searchUser, searchPw)
		if err != nil {
			L.Push(ctx.SetError(err))
			return 1
		}
		if !ok {
			L.Push(ctx.SetError(errors.New("bind with search user failed")))
			return 1
		}

		filter := fmt.Sprintf("(uid=%s)", ldap.EscapeFilter(user))
		req := ldap.NewSearchRequest(
			baseDn, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases,
			0, 0, false, filter, []string{"dn"}, nil,
		)
		res, err := conn.Search(req)
		if err != nil {
			L.Push(ctx.SetError(fmt.Errorf("ldap search failed: %w", err)))
			return 1
		}

		// Take the first result; no matches means no user to bind as.
		if len(res.Entries) == 0 {
			L.Push(lua.LFalse)
			return 1
		}

		ok, err = tryBind(conn, res.Entries[0].DN, password)
		if err != nil {
			L.Push(ctx.SetError(err))
			return 1
		}

		L.Push(lua.LBool(ok))
		return 1
	}
}

// tryBind distinguishes credential rejection (false, nil) from protocol
// faults (error).
func tryBind(conn ldapConn, dn, password string) (bool, error) {
	err := conn.Bind(dn, password)
	switch {
	case err == nil:
		return true, nil
	case ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials):
		return false, nil
	default:
		return false, fmt.Errorf("ldap bind failed: %w", err)
	}
}
