package vdom

import "fmt"

func attr(key string, value any) Attr { return Attr{Key: key, Value: value} }

// AttrOf creates an arbitrary attribute.
func AttrOf(key string, value any) Attr { return attr(key, value) }

// Common attributes

func Class(v string) Attr     { return attr("class", v) }
func ID(v string) Attr        { return attr("id", v) }
func Href(v string) Attr      { return attr("href", v) }
func Src(v string) Attr       { return attr("src", v) }
func Alt(v string) Attr       { return attr("alt", v) }
func TitleAttr(v string) Attr { return attr("title", v) }
func Lang(v string) Attr      { return attr("lang", v) }
func Rel(v string) Attr       { return attr("rel", v) }
func Target(v string) Attr    { return attr("target", v) }
func StyleAttr(v string) Attr { return attr("style", v) }
func Role(v string) Attr      { return attr("role", v) }
func Datetime(v string) Attr  { return attr("datetime", v) }
func Width(v any) Attr        { return attr("width", v) }
func Height(v any) Attr       { return attr("height", v) }
func Charset(v string) Attr   { return attr("charset", v) }
func Content(v string) Attr   { return attr("content", v) }
func NameAttr(v string) Attr  { return attr("name", v) }
func Property(v string) Attr  { return attr("property", v) }

// Form attributes

func Type(v string) Attr        { return attr("type", v) }
func Value(v any) Attr          { return attr("value", v) }
func Placeholder(v string) Attr { return attr("placeholder", v) }
func For(v string) Attr         { return attr("for", v) }
func Action(v string) Attr      { return attr("action", v) }
func Method(v string) Attr      { return attr("method", v) }
func Min(v any) Attr            { return attr("min", v) }
func Max(v any) Attr            { return attr("max", v) }
func Step(v any) Attr           { return attr("step", v) }

// Boolean attributes render as bare names when true and are omitted
// when false.

func Disabled(v bool) Attr { return attr("disabled", v) }
func Checked(v bool) Attr  { return attr("checked", v) }
func Required(v bool) Attr { return attr("required", v) }
func Readonly(v bool) Attr { return attr("readonly", v) }
func Selected(v bool) Attr { return attr("selected", v) }
func Multiple(v bool) Attr { return attr("multiple", v) }
func Defer(v bool) Attr    { return attr("defer", v) }
func Async(v bool) Attr    { return attr("async", v) }
func Hidden(v bool) Attr   { return attr("hidden", v) }

// Data creates a data-* attribute.
func Data(suffix string, value any) Attr {
	return attr("data-"+suffix, value)
}

// Aria creates an aria-* attribute.
func Aria(suffix string, value any) Attr {
	return attr("aria-"+suffix, value)
}

// On declares a client-side action binding. Action names are opaque to
// the server; the renderer emits them as data-on-<event> attributes and
// assigns the element a hydration marker so the client runtime can wire
// the listener after hydration.
//
//	Button(On("click", "counter#increment"), Text("+"))
func On(event, action string) Attr {
	return attr("on"+event, action)
}

// ClassIf returns a class attribute when cond holds and an empty Attr
// (ignored by El) otherwise.
func ClassIf(cond bool, v string) Attr {
	if cond {
		return Class(v)
	}
	return Attr{}
}

// Classes joins the non-empty class names into one class attribute.
func Classes(names ...string) Attr {
	out := ""
	for _, n := range names {
		if n == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += n
	}
	return Class(out)
}

// ValueString renders an attribute value the way the renderer will.
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
