// Package retry runs remote operations under a bounded attempt budget.
//
// The default policy matches PokeAPI's tolerance: three attempts with a
// constant three second wait between them. Waiting goes through Config.Sleep
// so tests can observe delays without sleeping.
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//		return client.GetJSON(ctx, url, &payload)
//	}, retry.FromConfig(cfg.Retry, log))
package retry
