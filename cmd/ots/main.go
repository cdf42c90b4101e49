// Copyright 2025 Certen Protocol

package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certen/ots-engine/pkg/calendar"
	"github.com/certen/ots-engine/pkg/config"
	"github.com/certen/ots-engine/pkg/ethereum"
	"github.com/certen/ots-engine/pkg/ots"
	"github.com/certen/ots-engine/pkg/primitives"
	"github.com/certen/ots-engine/pkg/shrink"
	"github.com/certen/ots-engine/pkg/submit"
	"github.com/certen/ots-engine/pkg/upgrade"
	"github.com/certen/ots-engine/pkg/verifier"
	"github.com/certen/ots-engine/pkg/verify"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	var err error
	switch os.Args[1] {
	case "stamp":
		err = runStamp(ctx, cfg, os.Args[2:])
	case "upgrade":
		err = runUpgrade(ctx, cfg, os.Args[2:])
	case "shrink":
		err = runShrink(os.Args[2:])
	case "verify":
		err = runVerify(ctx, cfg, os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Printf("ots %s: %v", os.Args[1], err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: ots <stamp|upgrade|shrink|verify|info> [flags] <file>")
}

func runStamp(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("stamp", flag.ExitOnError)
	fudgeHex := fs.String("fudge", "", "hex-encoded fudge bytes (defaults to 16 random bytes)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ots stamp [-fudge=<hex>] <file>")
	}
	target := fs.Arg(0)

	var fudge []byte
	if *fudgeHex != "" {
		var err error
		fudge, err = hex.DecodeString(*fudgeHex)
		if err != nil {
			return fmt.Errorf("decode -fudge: %w", err)
		}
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("read %s: %w", target, err)
	}
	digest := sha256.Sum256(data)

	fh, err := ots.NewFileHash(primitives.SHA256, digest[:])
	if err != nil {
		return fmt.Errorf("build file hash: %w", err)
	}
	ts := &ots.Timestamp{Version: ots.CurrentVersion, FileHash: fh, Tree: ots.NewTree()}

	client := calendar.New(cfg.CalendarTimeout.Duration(), log.Default())
	result, errs := submit.Submit(ctx, ts, cfg.Calendars, client, fudge)
	for _, e := range errs {
		log.Printf("stamp: %v", e)
	}
	if result.Tree.Empty() {
		return fmt.Errorf("no calendar accepted the digest")
	}

	outPath := target + ".ots"
	if err := writeTimestampFile(outPath, result); err != nil {
		return err
	}
	log.Printf("stamp: wrote %s", outPath)
	return nil
}

func runUpgrade(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("upgrade", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ots upgrade <file.ots>")
	}
	path := fs.Arg(0)

	ts, err := readTimestampFile(path)
	if err != nil {
		return err
	}

	client := calendar.New(cfg.CalendarTimeout.Duration(), log.Default())
	result, errs := upgrade.Upgrade(ctx, ts, client)
	for _, e := range errs {
		log.Printf("upgrade: %v", e)
	}
	if err := writeTimestampFile(path, result); err != nil {
		return err
	}
	if ots.CanUpgrade(result) {
		log.Printf("upgrade: %s still has pending attestations", path)
	} else {
		log.Printf("upgrade: %s is fully attested", path)
	}
	return nil
}

func runShrink(args []string) error {
	fs := flag.NewFlagSet("shrink", flag.ExitOnError)
	chain := fs.String("chain", "bitcoin", "chain to shrink to (bitcoin, litecoin, ethereum)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ots shrink -chain=<chain> <file.ots>")
	}
	path := fs.Arg(0)

	ts, err := readTimestampFile(path)
	if err != nil {
		return err
	}
	result, err := shrink.Shrink(ts, *chain)
	if err != nil {
		return err
	}
	return writeTimestampFile(path, result)
}

func runVerify(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ots verify <file.ots>")
	}
	path := fs.Arg(0)

	ts, err := readTimestampFile(path)
	if err != nil {
		return err
	}

	registry := buildVerifierRegistry(cfg)
	result, err := verify.Verify(ctx, ts, registry)
	if err != nil {
		return err
	}
	for name, errs := range result.Errors {
		for _, e := range errs {
			log.Printf("verify: %s: %v", name, e)
		}
	}
	for unixTime, names := range result.Attestations {
		fmt.Printf("attested at %s, confirmed by %v\n", time.Unix(unixTime, 0).UTC().Format(time.RFC3339), names)
	}
	if len(result.Attestations) == 0 {
		return fmt.Errorf("no attestation could be verified")
	}
	return nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "show intermediate message hashes")
	showVersion := fs.Bool("show-version", false, "print the Timestamp version line")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ots info [-verbose] [-show-version] <file.ots>")
	}

	ts, err := readTimestampFile(fs.Arg(0))
	if err != nil {
		return err
	}
	out, err := ots.Info(ts, ots.InfoOptions{Verbose: *verbose, ShowVersion: *showVersion})
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// buildVerifierRegistry names each configured verifier after its
// backing service rather than its chain, since more than one verifier
// can cover the same chain and Registry dispatches by name, not chain
// (spec.md §4.7/C12).
func buildVerifierRegistry(cfg *config.Config) verifier.Registry {
	reg := verifier.Registry{}
	if cfg.Verifiers.BitcoinRPCURL != "" {
		reg["verifyViaBitcoinRPC"] = verifier.NewBitcoinVerifier("verifyViaBitcoinRPC", cfg.Verifiers.BitcoinRPCURL, cfg.Verifiers.BitcoinRPCUser, cfg.Verifiers.BitcoinRPCPass, cfg.Verifiers.Timeout.Duration())
	}
	if cfg.Verifiers.LitecoinRPCURL != "" {
		reg["verifyViaLitecoinRPC"] = verifier.NewLitecoinVerifier("verifyViaLitecoinRPC", cfg.Verifiers.LitecoinRPCURL, cfg.Verifiers.LitecoinRPCUser, cfg.Verifiers.LitecoinRPCPass, cfg.Verifiers.Timeout.Duration())
	}
	if cfg.Verifiers.EthereumRPCURL != "" {
		if client, err := ethereum.NewClient(cfg.Verifiers.EthereumRPCURL); err != nil {
			log.Printf("verify: ethereum verifier disabled: %v", err)
		} else {
			reg["verifyViaEthereumRPC"] = verifier.NewEthereumVerifier("verifyViaEthereumRPC", client)
		}
	}
	return reg
}

func readTimestampFile(path string) (*ots.Timestamp, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ts, err := ots.ReadTimestamp(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ts, nil
}

func writeTimestampFile(path string, ts *ots.Timestamp) error {
	data, err := ots.WriteTimestamp(ts)
	if err != nil {
		return fmt.Errorf("serialize timestamp: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
