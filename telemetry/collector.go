package telemetry

// Census is the non-terminal population per kind at a window boundary.
type Census struct {
	Drones   int
	Animals  int
	Poachers int
}

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	attacks          int
	damage           float64
	kills            int
	captures         int
	poachersDetected int
	poachersLost     int
	animalsDetected  int
	animalsLost      int
	deepTicks        int
	droneTicks       int
	captureRewardSum float64
}

// NewCollector creates a new stats collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int32(windowTicks)}
}

// RecordEvent counts a drained domain event.
func (c *Collector) RecordEvent(e Event) {
	switch e.Type {
	case EventAnimalAttacked:
		c.attacks++
		c.damage += e.Amount
	case EventAnimalKilled:
		c.kills++
	case EventPoacherCaptured:
		c.captures++
		c.captureRewardSum += e.Amount
	case EventPoacherDetected:
		c.poachersDetected++
	case EventPoacherLost:
		c.poachersLost++
	case EventAnimalDetected:
		c.animalsDetected++
	case EventAnimalLost:
		c.animalsLost++
	}
}

// RecordDroneTick records one drone-tick, and whether the drone flew deep.
func (c *Collector) RecordDroneTick(deep bool) {
	c.droneTicks++
	if deep {
		c.deepTicks++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// healths holds the current health of every living animal.
func (c *Collector) Flush(currentTick int32, census Census, healths []float64) WindowStats {
	var deepShare float64
	if c.droneTicks > 0 {
		deepShare = float64(c.deepTicks) / float64(c.droneTicks)
	}

	mean, p10, p50, p90 := ComputeHealthStats(healths)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Drones:   census.Drones,
		Animals:  census.Animals,
		Poachers: census.Poachers,

		Attacks:  c.attacks,
		Damage:   c.damage,
		Kills:    c.kills,
		Captures: c.captures,

		PoachersDetected: c.poachersDetected,
		PoachersLost:     c.poachersLost,
		AnimalsDetected:  c.animalsDetected,
		AnimalsLost:      c.animalsLost,
		DeepShare:        deepShare,
		CaptureReward:    c.captureRewardSum,

		HealthMean: mean,
		HealthP10:  p10,
		HealthP50:  p50,
		HealthP90:  p90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.attacks = 0
	c.damage = 0
	c.kills = 0
	c.captures = 0
	c.poachersDetected = 0
	c.poachersLost = 0
	c.animalsDetected = 0
	c.animalsLost = 0
	c.deepTicks = 0
	c.droneTicks = 0
	c.captureRewardSum = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int32 {
	return c.windowTicks
}
