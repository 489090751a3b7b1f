/*
Package runner drives an Editor from a newline-delimited JSON command stream.

It is the automation counterpart of the interactive shell: a host process
writes one Command object per line and reads one Event object back per line,
which makes the editor scriptable from any language that can spawn a
subprocess. Wiring refusals are not stream errors; the event carries ok=false
plus a machine-readable reason code so drivers can branch on them.

# Usage

	r := runner.NewRunner()
	if err := r.Run(ctx, editor); err != nil {
		log.Fatal(err)
	}
*/
package runner
