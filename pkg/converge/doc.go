// Package converge runs mutations against an eventually consistent store and
// waits until the store reflects them.
//
// Every run sends its mutation exactly once. Afterwards it only reads,
// classifying each read as an Outcome:
//
//	200            Success
//	404            NotFound
//	anything else  Fatal (aborts the run, never retried)
//	no response    Fatal with StatusCode 0 (a *TransportError)
//
// Reads repeat until a Predicate accepts the outcome or the Policy runs out
// of attempts, in which case the run fails with *ConvergenceTimeout carrying
// the last outcome. Delays between reads follow Policy.Delay and are skipped
// after the final attempt.
//
//	exec, _ := converge.New(sender, converge.WithLogger(logger))
//	res, err := exec.CreateUntilVisible(ctx, petstore.KindPet, pet, converge.Policy{})
//	if errors.Is(err, converge.ErrConvergenceTimeout) { ... }
//
// A zero Policy selects the executor's default policy.
package converge
