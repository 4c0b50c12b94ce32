package token

import "fortio.org/sets"

// LifetimeInfo enables introspection of known keywords and sigils.
type LifetimeInfo struct {
	Keywords sets.Set[string]
	Sigils   sets.Set[string]
}

var info = LifetimeInfo{
	Keywords: sets.New[string](),
	Sigils:   sets.New(string(CallSigil), string(VarSigil), string(Quote), string(Comment), BlockOpen, BlockClose),
}

func init() {
	for k := range keywords {
		info.Keywords.Add(k)
	}
}

func Info() LifetimeInfo {
	return info
}
