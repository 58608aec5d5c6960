// Command otpauth-loadtest measures the Redis user store under concurrent
// load and checks that concurrent updates of the same record lose no writes.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	otpAuth "github.com/MrEthical07/otpAuth"
	"github.com/MrEthical07/otpAuth/store/redisstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		users       = flag.Int("users", 10000, "number of accounts to seed")
		hot         = flag.Int("hot", 16, "accounts targeted by the update phase")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (read + update)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "otpload", "store key prefix")
	)
	flag.Parse()

	if *users <= 0 || *hot <= 0 || *hot > *users || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, hot, concurrency, and ops must be > 0 and hot <= users")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	store := redisstore.New(client, redisstore.WithPrefix(*prefix))

	ids := make([]string, *users)
	fmt.Printf("seeding %d users...\n", *users)
	startSeed := time.Now()
	runID := strconv.FormatInt(time.Now().UnixNano(), 36)
	for i := 0; i < *users; i++ {
		u, err := store.Create(ctx, otpAuth.CreateUserInput{
			Name:         "0",
			Email:        fmt.Sprintf("load-%s-%d@example.com", runID, i),
			PasswordHash: "$argon2id$placeholder",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "create failed: %v\n", err)
			os.Exit(1)
		}
		ids[i] = u.UserID
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	readStats := runReadPhase(ctx, store, ids, *ops, *concurrency)
	updateStats, applied := runUpdatePhase(ctx, store, ids[:*hot], *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("read", readStats)
	printStats("update", updateStats)

	stored, err := sumCounters(ctx, store, ids[:*hot])
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("lost-update check: applied=%d stored=%d\n", applied, stored)
	if stored != applied {
		fmt.Fprintln(os.Stderr, "LOST UPDATES DETECTED")
		os.Exit(1)
	}
}

func runReadPhase(ctx context.Context, store *redisstore.Store, ids []string, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(ids))
				t0 := time.Now()
				_, err := store.FindByID(ctx, ids[idx])
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

// runUpdatePhase increments a counter kept in each hot record's Name field
// and returns how many increments were acknowledged by the store.
func runUpdatePhase(ctx context.Context, store *redisstore.Store, ids []string, ops, concurrency int) (phaseStats, int64) {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		applied   int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(ids))

				t0 := time.Now()
				_, err := store.Update(ctx, ids[idx], func(u *otpAuth.UserRecord) error {
					n, err := strconv.Atoi(u.Name)
					if err != nil {
						return err
					}
					u.Name = strconv.Itoa(n + 1)
					u.UpdatedAt = time.Now()
					return nil
				})
				d := time.Since(t0)
				if err == nil {
					atomic.AddInt64(&applied, 1)
				} else {
					atomic.AddInt64(&failures, 1)
				}

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures), applied
}

func sumCounters(ctx context.Context, store *redisstore.Store, ids []string) (int64, error) {
	var sum int64
	for _, id := range ids {
		u, err := store.FindByID(ctx, id)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(u.Name, 10, 64)
		if err != nil {
			return 0, err
		}
		sum += n
	}
	return sum, nil
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
