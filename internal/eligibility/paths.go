package eligibility

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// pathResults holds what each trust path reported. Each goroutine writes only
// its own field, so no locking is needed; results are read after Wait.
type pathResults struct {
	verification PathResult
	attestation  PathResult
}

// allDegraded reports whether every path that was consulted failed to answer.
func (p pathResults) allDegraded() bool {
	if p.verification.Consulted && !p.verification.Degraded {
		return false
	}
	if p.attestation.Consulted && !p.attestation.Degraded {
		return false
	}
	return true
}

// gatherPaths runs the consulted trust paths in parallel under a shared
// timeout. Paths fail open: a degraded path marks itself and returns nil so
// its sibling keeps running, which means Wait never reports an error.
func (s *Service) gatherPaths(ctx context.Context, req EvaluateRequest) pathResults {
	ctx, cancel := context.WithTimeout(ctx, evaluateTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	var results pathResults

	s.launchVerificationCheck(ctx, g, &results, req)
	if !req.Attester.IsNil() {
		s.launchAttestationCheck(ctx, g, &results, req)
	}

	_ = g.Wait()
	return results
}

func (s *Service) launchVerificationCheck(
	ctx context.Context,
	g *errgroup.Group,
	results *pathResults,
	req EvaluateRequest,
) {
	g.Go(func() error {
		start := time.Now()
		ok, err := s.verifications.CheckAgeThreshold(ctx, req.Subject, req.Threshold)
		latency := time.Since(start)

		results.verification = PathResult{Consulted: true, Latency: latency}
		s.observePathDuration("verification", latency)

		if err != nil {
			s.logger.WarnContext(ctx, "verification path degraded",
				"subject", req.Subject,
				"error", err,
			)
			results.verification.Degraded = true
			s.incrementPathDegraded("verification")
			return nil
		}
		results.verification.Passed = ok
		return nil
	})
}

func (s *Service) launchAttestationCheck(
	ctx context.Context,
	g *errgroup.Group,
	results *pathResults,
	req EvaluateRequest,
) {
	g.Go(func() error {
		start := time.Now()
		ok, err := s.attestations.Check(ctx, req.Attester, req.Subject, req.Threshold)
		latency := time.Since(start)

		results.attestation = PathResult{Consulted: true, Latency: latency}
		s.observePathDuration("attestation", latency)

		if err != nil {
			s.logger.WarnContext(ctx, "attestation path degraded",
				"subject", req.Subject,
				"attester", req.Attester,
				"error", err,
			)
			results.attestation.Degraded = true
			s.incrementPathDegraded("attestation")
			return nil
		}
		results.attestation.Passed = ok
		return nil
	})
}

func (s *Service) observePathDuration(path string, latency time.Duration) {
	if s.metrics != nil {
		s.metrics.ObservePathDuration(path, float64(latency.Milliseconds()))
	}
}

func (s *Service) incrementPathDegraded(path string) {
	if s.metrics != nil {
		s.metrics.IncrementPathDegraded(path)
	}
}
