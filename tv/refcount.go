package tv

import "fmt"

// IncRef adds a reference to a counted value. Persistent and immediate
// values are untouched.
func IncRef(v TypedValue) {
	if !IsRefcounted(v.Type) {
		return
	}
	switch v.Type {
	case KindStr:
		// A relaxed tag can cover a static or uncounted object; its
		// count is not ours to touch.
		if sd := v.Str(); !sd.static && !sd.uncounted {
			sd.count++
		}
	case KindDict:
		LookupCounted(Handle(v.Val)).Retain()
	default:
		panic(fmt.Sprintf("tv: IncRef on %v", v.Type))
	}
}

// DecRef drops a reference to a counted value, releasing the underlying
// object when the count reaches zero.
func DecRef(v TypedValue) {
	if !IsRefcounted(v.Type) {
		return
	}
	switch v.Type {
	case KindStr:
		sd := v.Str()
		if sd.static || sd.uncounted {
			return
		}
		sd.count--
		if sd.count == 0 {
			freeString(sd)
		}
	case KindDict:
		h := Handle(v.Val)
		if LookupCounted(h).ReleaseRef() {
			DropCounted(h)
		}
	default:
		panic(fmt.Sprintf("tv: DecRef on %v", v.Type))
	}
}

// UncountedEnv deduplicates uncounted conversions: converting the same
// counted string twice inside one environment yields one uncounted
// object with its count bumped.
type UncountedEnv struct {
	seen map[string]*StringData
}

// NewUncountedEnv returns an empty conversion environment.
func NewUncountedEnv() *UncountedEnv {
	return &UncountedEnv{seen: make(map[string]*StringData)}
}

func (env *UncountedEnv) uncountedString(s string) *StringData {
	if sd := env.seen[s]; sd != nil {
		sd.count++
		return sd
	}
	sd := newUncountedString(s)
	env.seen[s] = sd
	return sd
}

// ConvertToUncounted rewrites a value into a form safe to share beyond
// any single request: counted strings become uncounted copies (one
// reference transfers out), counted dicts convert their contents in
// place. The inbound counted reference is consumed.
func ConvertToUncounted(env *UncountedEnv, v TypedValue) TypedValue {
	switch v.Type {
	case KindStr:
		sd := v.Str()
		out := MakeStr(env.uncountedString(sd.str))
		DecRef(v)
		return out
	case KindDict:
		if c, ok := LookupCounted(Handle(v.Val)).(UncountedConverter); ok {
			c.ConvertToUncounted(env)
			return TypedValue{Type: KindPersistentDict, Val: v.Val}
		}
		panic("tv: counted dict cannot convert to uncounted")
	default:
		return v
	}
}

// DecRefUncounted drops a reference produced by ConvertToUncounted. The
// surrounding uncounted sweeper calls this; counted values are a bug
// here.
func DecRefUncounted(v TypedValue) {
	switch v.Type {
	case KindPersistentStr:
		sd := v.Str()
		if !sd.uncounted {
			return // interned static, never swept
		}
		sd.count--
		if sd.count == 0 {
			freeString(sd)
		}
	case KindPersistentDict:
		r, ok := LookupCounted(Handle(v.Val)).(UncountedReleaser)
		if !ok {
			panic("tv: persistent dict cannot be swept")
		}
		if !r.IsUncounted() {
			return // static, never swept
		}
		r.ReleaseUncounted()
	case KindStr, KindDict:
		panic(fmt.Sprintf("tv: DecRefUncounted on counted %v", v.Type))
	}
}
