// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package cop

import "github.com/google/uuid"

// namer implements name_all_variables/store_names (§6): it mints a stable
// synthetic name for anonymous variables and constraints, and optionally
// keeps a lookup table from name to object so names survive being merged
// across independently-built sub-models.
type namer struct {
	store  bool
	byName map[string]interface{}
}

func newNamer(store bool) *namer {
	n := &namer{store: store}
	if store {
		n.byName = make(map[string]interface{})
	}
	return n
}

// autoName returns a fresh "prefix-<uuid>" name, used by name_all_variables
// to name an object that was never given an explicit name.
func (n *namer) autoName(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// register records name -> obj if store_names is enabled. A duplicate name
// silently overwrites the previous registration, matching the reference's
// "last write wins" treatment of name collisions.
func (n *namer) register(name string, obj interface{}) {
	if !n.store || name == "" {
		return
	}
	n.byName[name] = obj
}

// lookup returns the object registered under name, if store_names is
// enabled and name was registered.
func (n *namer) lookup(name string) (interface{}, bool) {
	if !n.store {
		return nil, false
	}
	obj, ok := n.byName[name]
	return obj, ok
}
