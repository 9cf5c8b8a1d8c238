package capability

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	lua "github.com/yuin/gopher-lua"
)

// HTMLModule exposes html_select and html_select_list: CSS selector
// queries over an HTML document.
//
// A matched element is returned as a table with text (the element's
// concatenated text content), html (its outer HTML) and attrs (attribute
// name to value).
type HTMLModule struct{}

// NewHTMLModule creates a new HTML module.
func NewHTMLModule() *HTMLModule {
	return &HTMLModule{}
}

// Name returns the module name.
func (m *HTMLModule) Name() string {
	return "html"
}

// Register registers the module into the Lua state.
func (m *HTMLModule) Register(L *lua.LState, ctx *Context) error {
	L.SetGlobal("html_select", L.NewFunction(m.selectOne(ctx)))
	L.SetGlobal("html_select_list", L.NewFunction(m.selectList(ctx)))
	return nil
}

// html_select(html, selector) -> element
// No matching element is an operational failure.
func (m *HTMLModule) selectOne(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 2)
		doc := L.CheckString(1)
		selector := L.CheckString(2)

		sel, err := query(doc, selector)
		if err != nil {
			L.Push(ctx.SetError(err))
			return 1
		}
		if sel.Length() == 0 {
			L.Push(ctx.SetError(fmt.Errorf("no element matched selector %q", selector)))
			return 1
		}

		L.Push(element(L, sel.First()))
		return 1
	}
}

// html_select_list(html, selector) -> {element, ...}
// An empty result list is not a failure.
func (m *HTMLModule) selectList(ctx *Context) lua.LGFunction {
	return func(L *lua.LState) int {
		checkArity(L, 2)
		doc := L.CheckString(1)
		selector := L.CheckString(2)

		sel, err := query(doc, selector)
		if err != nil {
			L.Push(ctx.SetError(err))
			return 1
		}

		list := L.NewTable()
		sel.Each(func(i int, s *goquery.Selection) {
			list.RawSetInt(i+1, element(L, s))
		})
		L.Push(list)
		return 1
	}
}

// query parses the document and applies the compiled selector.
func query(doc, selector string) (*goquery.Selection, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}

	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	return parsed.FindMatcher(matcher), nil
}

// element renders one matched node as a script value.
func element(L *lua.LState, sel *goquery.Selection) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("text", lua.LString(sel.Text()))

	if outer, err := goquery.OuterHtml(sel); err == nil {
		t.RawSetString("html", lua.LString(outer))
	}

	attrs := L.NewTable()
	if len(sel.Nodes) > 0 {
		for _, attr := range sel.Nodes[0].Attr {
			attrs.RawSetString(attr.Key, lua.LString(attr.Val))
		}
	}
	t.RawSetString("attrs", attrs)
	return t
}
