package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roman-kulish/bladerf/internal/sdr/bladerf"
	"github.com/roman-kulish/bladerf/internal/storage"
)

var anomaliesOnly bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions [session-id]",
	Short: "List recorded capture sessions, or the transfers of one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		store := storage.NewSqliteStore(cfg.Database)
		defer func() {
			err = errors.Join(err, store.Close())
		}()

		if len(args) == 0 {
			return listSessions(cmd.Context(), cmd.OutOrStdout(), store)
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid session id %q: %w", args[0], err)
		}
		return listTransfers(cmd.Context(), cmd.OutOrStdout(), store, id)
	},
}

func init() {
	sessionsCmd.Flags().String("db", "", "session database")
	sessionsCmd.Flags().BoolVar(&anomaliesOnly, "anomalies", false, "only list transfers with a non-zero status")
	bindFlag(sessionsCmd, "database", "db")
}

func listSessions(ctx context.Context, out io.Writer, store storage.Store) error {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tBOARD\tFREQUENCY\tRATE\tSAMPLES\tOVERRUNS\tFILE")
	for _, s := range sessions {
		duration := "running"
		if s.EndTime != nil {
			duration = s.EndTime.Sub(s.StartTime).Round(time.Second).String()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			s.ID,
			humanize.Time(s.StartTime),
			duration,
			s.Board,
			s.Frequency,
			s.SampleRate,
			humanize.Comma(int64(s.Samples)),
			s.Overruns,
			s.DataFile)
	}
	return w.Flush()
}

func listTransfers(ctx context.Context, out io.Writer, store *storage.SqliteStore, sessionID int64) (err error) {
	session, err := store.Session(ctx, sessionID)
	if err != nil {
		return err
	}

	var opts []func(*storage.TransferReader)
	if anomaliesOnly {
		opts = append(opts, storage.WithAnomaliesOnly())
	}

	reader, err := store.ReadTransfers(ctx, session.ID, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, reader.Close())
	}()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tTIMESTAMP\tSAMPLES\tFLAGS\tSTATUS\tRETRIES\tRECEIVED")
	for reader.Next(ctx) {
		t := reader.Current()
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t%d\t%s\n",
			t.Seq, t.Timestamp, t.Samples,
			bladerf.MetaFlagsFromBits(t.Flags), bladerf.MetaStatusFromBits(t.Status), t.Retries,
			t.ReceivedAt.Local().Format(time.StampMicro))
	}
	if err = reader.Error(); err != nil {
		return err
	}
	return w.Flush()
}
