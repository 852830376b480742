// Package intercept substitutes accelerated implementations into a host
// library's extension points, exactly once, whenever the host module
// becomes available.
//
// A [Registry] tracks a set of module names and a patch routine. When a
// tracked module is already loaded, [Registry.TryPatchNow] applies the
// patch immediately; otherwise [Registry.InstallHook] registers a load
// observer with the host's [Loader] and the patch runs on the next load
// event. Once the patch applies, or fails for good, the hook is removed.
// A failed patch leaves the host's original behavior in effect: the
// fallback contract is degraded performance, never degraded correctness.
//
// Extension points themselves are [Capability] slots. Installing an
// implementation is a compare-and-set, so racing code paths (an explicit
// call and a hook-triggered call) substitute harmlessly at most once.
//
// [Host] is the in-process module table used when the consumer
// application assembles its own modules rather than discovering them.
package intercept
