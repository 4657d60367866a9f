// sdview - Inspect Windows security descriptors from SDDL strings, local
// files and remote SMB shares.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/specterops/secdesc"
	"github.com/specterops/secdesc/internal/logger"
	"github.com/specterops/secdesc/smbquery"
)

const Version = "1.0.0"

// CLI flags
var (
	// Output options
	debug    bool
	noColors bool
	logfile  string

	// Input selection
	sddlStrings []string
	includeSACL bool

	// Remote access
	host         string
	share        string
	port         int
	threads      int
	timeout      float64
	authDomain   string
	authUser     string
	authPassword string
	authHashes   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sdview [paths...]",
		Short: "sdview - Inspect Windows security descriptors",
		Long: `sdview renders Windows security descriptors as SDDL. It accepts SDDL
strings directly, reads descriptors of local files, or fetches them from
files on remote SMB shares.`,
		Run:     run,
		Version: Version,
	}

	// Output options
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Debug mode")
	rootCmd.Flags().BoolVar(&noColors, "no-colors", false, "Disable ANSI escape codes")
	rootCmd.Flags().StringVar(&logfile, "logfile", "", "Log file to write to")

	// Input selection
	rootCmd.Flags().StringArrayVar(&sddlStrings, "sddl", nil, "SDDL string to parse (can be specified multiple times)")
	rootCmd.Flags().BoolVar(&includeSACL, "sacl", false, "Also request the SACL (needs extra privileges)")

	// Remote access
	rootCmd.Flags().StringVar(&host, "host", "", "SMB server to query instead of the local filesystem")
	rootCmd.Flags().StringVar(&share, "share", "", "Share name on the SMB server")
	rootCmd.Flags().IntVar(&port, "port", 445, "SMB port")
	rootCmd.Flags().IntVar(&threads, "threads", 8, "Number of concurrent queries")
	rootCmd.Flags().Float64VarP(&timeout, "timeout", "t", 10, "Timeout in seconds for network operations")
	rootCmd.Flags().StringVar(&authDomain, "auth-domain", "", "Windows domain to authenticate to")
	rootCmd.Flags().StringVar(&authUser, "auth-user", "", "Username for the SMB server")
	rootCmd.Flags().StringVar(&authPassword, "auth-password", "", "Password for the SMB server")
	rootCmd.Flags().StringVar(&authHashes, "auth-hashes", "", "LM:NT hashes for pass-the-hash")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	if len(sddlStrings) == 0 && len(args) == 0 {
		fmt.Println("[!] Nothing to do. Provide SDDL strings with --sddl or file paths as arguments.")
		os.Exit(1)
	}
	if authPassword != "" && authHashes != "" {
		fmt.Println("[!] Options --auth-password and --auth-hashes are mutually exclusive.")
		os.Exit(1)
	}
	if host != "" && share == "" {
		fmt.Println("[!] Option --share is required when using --host.")
		os.Exit(1)
	}

	log := logger.New(debug, noColors, logfile)
	defer log.Close()

	info := secdesc.OwnerSecurityInformation |
		secdesc.GroupSecurityInformation |
		secdesc.DACLSecurityInformation
	if includeSACL {
		info |= secdesc.SACLSecurityInformation
	}

	failed := false
	for _, s := range sddlStrings {
		if err := showSDDL(log, s); err != nil {
			log.Error(err.Error())
			failed = true
		}
	}

	if len(args) > 0 {
		var err error
		if host != "" {
			err = showRemote(log, args, info)
		} else {
			err = showLocal(log, args, info)
		}
		if err != nil {
			log.Error(err.Error())
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

// showSDDL round-trips one SDDL string through a binary descriptor.
func showSDDL(log *logger.Logger, s string) error {
	box, err := secdesc.FromString(s)
	if err != nil {
		return err
	}
	defer box.Close()

	printDescriptor(log, fmt.Sprintf("sddl %q", s), box.View())
	return nil
}

func showLocal(log *logger.Logger, paths []string, info secdesc.SecurityInformation) error {
	var g errgroup.Group
	g.SetLimit(threads)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			box, err := secdesc.LookupPathFor(p, info)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			defer box.Close()

			printDescriptor(log, p, box.View())
			return nil
		})
	}
	return g.Wait()
}

func showRemote(log *logger.Logger, paths []string, info secdesc.SecurityInformation) error {
	creds := smbquery.Credentials{
		Username: authUser,
		Password: authPassword,
		Domain:   authDomain,
	}
	if authHashes != "" {
		hash, err := parseNTHash(authHashes)
		if err != nil {
			return err
		}
		creds.NTHash = hash
	}

	ctx := context.Background()
	opts := []smbquery.Option{
		smbquery.WithPort(port),
		smbquery.WithTimeout(time.Duration(timeout * float64(time.Second))),
		smbquery.WithLogger(log),
	}

	pool := smbquery.NewPool(threads)
	defer pool.CloseAll()

	var g errgroup.Group
	g.SetLimit(threads)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			session, err := pool.Get(ctx, host, creds, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			defer pool.Put(host, session)

			if err := session.Mount(share); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}

			box, err := session.QuerySecurity(p, info)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			defer box.Close()

			printDescriptor(log, fmt.Sprintf(`\\%s\%s\%s`, host, share, p), box.View())
			return nil
		})
	}
	return g.Wait()
}

func printDescriptor(log *logger.Logger, name string, sd *secdesc.SecurityDescriptor) {
	var lines []string
	lines = append(lines, fmt.Sprintf("[+] %s", name))

	if owner := sd.Owner(); owner != nil {
		lines = append(lines, fmt.Sprintf("    owner: %s", owner))
	} else {
		lines = append(lines, "    owner: <none>")
	}
	if group := sd.Group(); group != nil {
		lines = append(lines, fmt.Sprintf("    group: %s", group))
	} else {
		lines = append(lines, "    group: <none>")
	}

	lines = append(lines, fmt.Sprintf("    control: 0x%04x", uint16(sd.Control())))
	lines = append(lines, "    dacl: "+describeACL(sd.DACL(), sd.Control()&secdesc.SEDACLPresent != 0))
	lines = append(lines, "    sacl: "+describeACL(sd.SACL(), sd.Control()&secdesc.SESACLPresent != 0))

	if sddl, err := sd.SDDL(); err == nil {
		lines = append(lines, fmt.Sprintf("    sddl: %s", sddl))
	} else {
		lines = append(lines, fmt.Sprintf("    sddl: <error: %v>", err))
	}

	// One Print call per descriptor so concurrent output stays grouped.
	log.Print(strings.Join(lines, "\n"))
}

func describeACL(acl *secdesc.ACL, present bool) string {
	switch {
	case acl != nil:
		return fmt.Sprintf("%d ACEs (%d bytes)", acl.AceCount(), acl.Size())
	case present:
		return "null (no access control)"
	default:
		return "absent"
	}
}

// parseNTHash extracts the NT half of an LM:NT hash pair.
func parseNTHash(hashes string) ([]byte, error) {
	nt := hashes
	if i := strings.LastIndexByte(hashes, ':'); i >= 0 {
		nt = hashes[i+1:]
	}
	hash, err := hex.DecodeString(nt)
	if err != nil || len(hash) != 16 {
		return nil, fmt.Errorf("invalid NT hash %q", nt)
	}
	return hash, nil
}
