// Package redis stores reports in Redis.
//
// Each report is a JSON string under "<prefix>report:<id>". The sorted set
// "<prefix>reports" indexes ids by creation time so List can page newest
// first. A TTL, when set, applies to the report keys only; List prunes
// index entries whose report has expired.
//
//	rs := redis.NewReportStore(redis.Options{
//		Addr:   "localhost:6379",
//		Prefix: "pitchgraph:",
//		TTL:    24 * time.Hour,
//	})
//	defer rs.Close()
package redis
