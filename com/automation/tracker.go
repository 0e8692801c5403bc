// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package automation

// Tracker registers owned objects and variants so that one ReleaseAll call
// can drain everything a unit of work produced, whatever its exit path.
// Like the resources it tracks, a Tracker is confined to its apartment
// thread; it takes no locks.
type Tracker struct {
	objects  map[*Object]struct{}
	variants map[*Variant]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{
		objects:  make(map[*Object]struct{}),
		variants: make(map[*Variant]struct{}),
	}
}

// TrackObject registers o for release by ReleaseAll and returns it. Closing
// o early is fine: Close deregisters it first.
func (t *Tracker) TrackObject(o *Object) *Object {
	if o == nil || o.disp == nil {
		return o
	}
	o.tracker = t
	t.objects[o] = struct{}{}
	return o
}

// TrackVariant registers v for clearing by ReleaseAll and returns it. A
// tracked variant cleared directly leaves a stale registry entry behind;
// that entry is harmless, since clearing twice is a no-op.
func (t *Tracker) TrackVariant(v *Variant) *Variant {
	if v == nil {
		return v
	}
	t.variants[v] = struct{}{}
	return v
}

func (t *Tracker) forgetObject(o *Object) {
	delete(t.objects, o)
}

// ReleaseVariant clears v and removes it from the registry.
func (t *Tracker) ReleaseVariant(v *Variant) error {
	delete(t.variants, v)
	return v.Clear()
}

// Len reports how many resources are currently registered.
func (t *Tracker) Len() int {
	return len(t.objects) + len(t.variants)
}

// ReleaseAll clears every tracked variant and closes every tracked object,
// leaving the tracker empty and reusable. Calling it again is a no-op.
func (t *Tracker) ReleaseAll() error {
	var firstErr error

	for v := range t.variants {
		if err := v.Clear(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(t.variants, v)
	}
	for o := range t.objects {
		o.tracker = nil
		if err := o.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(t.objects, o)
	}

	return firstErr
}

// CreateObject is CreateObject with the result tracked.
func (t *Tracker) CreateObject(spec string) (*Object, error) {
	o, err := CreateObject(spec)
	if err != nil {
		return nil, err
	}
	return t.TrackObject(o), nil
}

// ActiveObject is ActiveObject with the result tracked.
func (t *Tracker) ActiveObject(spec string) (*Object, error) {
	o, err := ActiveObject(spec)
	if err != nil {
		return nil, err
	}
	return t.TrackObject(o), nil
}
