// Package update keeps a superrename installation current with its source repository.
//
// This package handles:
//   - Limiting automatic checks to one attempt per calendar day
//   - Cloning or resetting and pulling the repository working copy
//   - Comparing the repository's declared version with the running one
//   - Rebuilding and re-linking the tool when the versions differ
//
// The package does not exit the process. It prints user-facing progress and
// failure messages and returns an Outcome; the caller decides the exit status.
//
// Example usage:
//
//	ctrl := update.NewController(cfg, st, process.NewRunner())
//	outcome, err := ctrl.CheckAndUpgrade(ctx, false)
//	if err != nil {
//	    // missing git or an unparseable config file
//	}
//	if outcome.Terminal() {
//	    // a rebuild was attempted; stop here
//	}
package update
