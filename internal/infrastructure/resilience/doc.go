/*
Package resilience provides a circuit breaker used to skip failing probe
strategies.

# Overview

The OS probe chains several strategies (an OS tool, a second OS tool, a raw
socket test). A strategy whose tool is missing or broken fails on every call;
guarding it with a Breaker lets the chain skip it for a cooldown window
instead of paying a failed exec on every request.

# States

  - Closed: calls pass through; consecutive failures are counted
  - Open: calls are rejected with ErrCircuitOpen until the cooldown elapses
  - Half-open: one trial call decides between Closed and Open

# Usage

	breaker := resilience.New("lsof", resilience.Settings{
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
	})

	err := breaker.Do(func() error {
		return runLsof()
	})
*/
package resilience
