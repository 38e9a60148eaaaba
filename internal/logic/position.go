package logic

// Position is the single source of truth for the light level and the
// enabled flag. Not safe for concurrent use; owned by the controller.
type Position struct {
	size    int
	level   Level
	enabled bool
}

// NewPosition creates a Position for size actuators, starting all off and enabled.
func NewPosition(size int) *Position {
	if size < 1 {
		size = 1
	}
	return &Position{
		size:    size,
		level:   LevelOff,
		enabled: true,
	}
}

// Size returns the number of actuators.
func (p *Position) Size() int {
	return p.size
}

// Max returns the highest reachable level.
func (p *Position) Max() Level {
	return Level(p.size - 1)
}

// Current returns the current level.
func (p *Position) Current() Level {
	return p.level
}

// Set clamps l to [LevelOff, Max] and stores it. Returns the stored value.
func (p *Position) Set(l Level) Level {
	p.level = p.Clamp(l)
	return p.level
}

// Clamp returns l limited to [LevelOff, Max].
func (p *Position) Clamp(l Level) Level {
	if l < LevelOff {
		return LevelOff
	}
	if l > p.Max() {
		return p.Max()
	}
	return l
}

// Enabled reports whether the system is running.
func (p *Position) Enabled() bool {
	return p.enabled
}

// Enable sets the enabled flag. Returns false if it was already set.
func (p *Position) Enable() bool {
	if p.enabled {
		return false
	}
	p.enabled = true
	return true
}

// Disable clears the enabled flag. Returns false if it was already clear.
func (p *Position) Disable() bool {
	if !p.enabled {
		return false
	}
	p.enabled = false
	return true
}

// Step moves the level one place in dir. At a boundary the level is left
// unchanged and the returned kind is KindMaxReached or KindMinReached.
// DirNone returns an empty kind.
func (p *Position) Step(dir Direction) (from, to Level, kind Kind) {
	from = p.level
	switch dir {
	case DirUp:
		if from == p.Max() {
			return from, from, KindMaxReached
		}
		return from, p.Set(from + 1), KindStepUp
	case DirDown:
		if from == LevelOff {
			return from, from, KindMinReached
		}
		return from, p.Set(from - 1), KindStepDown
	default:
		return from, from, ""
	}
}
