package physics

// Arena owns every handle allocated through it and releases them in
// dependency order: constraints, then shapes, then bodies. Bodies are freed in
// reverse creation order, so the first body added (a creature's central body)
// goes last.
type Arena struct {
	world       World
	queue       *Queue
	bodies      []BodyID
	shapes      []ShapeID
	constraints []ConstraintID
	released    bool
}

// NewArena returns an arena allocating in w. When q is non-nil, Release
// defers through it while the world is locked.
func NewArena(w World, q *Queue) *Arena {
	return &Arena{world: w, queue: q}
}

// World returns the arena's world.
func (a *Arena) World() World { return a.world }

// AddBody creates and records a body.
func (a *Arena) AddBody(def BodyDef) BodyID {
	id := a.world.AddBody(def)
	a.bodies = append(a.bodies, id)
	return id
}

// AddCircle creates and records a circle shape.
func (a *Arena) AddCircle(body BodyID, def CircleDef) ShapeID {
	id := a.world.AddCircle(body, def)
	a.shapes = append(a.shapes, id)
	return id
}

// AddSegment creates and records a segment shape.
func (a *Arena) AddSegment(body BodyID, def SegmentDef) ShapeID {
	id := a.world.AddSegment(body, def)
	a.shapes = append(a.shapes, id)
	return id
}

// AddConstraint creates and records a constraint.
func (a *Arena) AddConstraint(def ConstraintDef) ConstraintID {
	id := a.world.AddConstraint(def)
	a.constraints = append(a.constraints, id)
	return id
}

// Bodies returns a copy of the owned bodies in creation order.
func (a *Arena) Bodies() []BodyID {
	return append([]BodyID(nil), a.bodies...)
}

// Shapes returns a copy of the owned shapes in creation order.
func (a *Arena) Shapes() []ShapeID {
	return append([]ShapeID(nil), a.shapes...)
}

// Constraints returns a copy of the owned constraints in creation order.
func (a *Arena) Constraints() []ConstraintID {
	return append([]ConstraintID(nil), a.constraints...)
}

// Released reports whether Release has been called.
func (a *Arena) Released() bool { return a.released }

// Release frees everything the arena owns. Calling it twice is a no-op.
// The arena's lists are detached immediately, so a deferred release still
// frees exactly what was owned when Release was called.
func (a *Arena) Release() {
	if a.released {
		return
	}
	a.released = true

	constraints, shapes, bodies := a.constraints, a.shapes, a.bodies
	a.constraints, a.shapes, a.bodies = nil, nil, nil

	a.queue.Run(a.world, func(w World) {
		for _, c := range constraints {
			w.RemoveConstraint(c)
		}
		for _, s := range shapes {
			w.RemoveShape(s)
		}
		for i := len(bodies) - 1; i >= 0; i-- {
			w.RemoveBody(bodies[i])
		}
	})
}
