package carrierctl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Apurer/go-gin-carrier-checkout/internal/clients/carriersync"
	"github.com/Apurer/go-gin-carrier-checkout/internal/clients/http/checkout"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

type simulateOptions struct {
	instance    int64
	carrier     string
	custom      string
	quietPeriod time.Duration
	skipSync    bool
}

// SimulationResult is the JSON output of simulate.
type SimulationResult struct {
	OrderID  int64              `json:"orderId"`
	Carriers []checkout.Carrier `json:"carriers,omitempty"`
	Notices  []checkout.Notice  `json:"notices,omitempty"`
}

// NewSimulateCommand drives one checkout the way the storefront does:
// select the rate, edit the carrier field, wait out the debounce, place the
// order and open the thank-you page.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one checkout session against the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.instance <= 0 {
				return errors.New("--instance must be greater than zero")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), rootOpts.Timeout)
			defer cancel()
			client, err := newClient(rootOpts)
			if err != nil {
				return err
			}
			result, err := runSimulation(ctx, client, rootOpts, opts, cmd)
			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" && result != nil {
				if werr := writeJSON(out, result); werr != nil {
					return werr
				}
				return err
			}
			if err != nil {
				for _, n := range resultNotices(result) {
					fmt.Fprintf(out, "notice: %s\n", n.Message)
				}
				return err
			}
			fmt.Fprintf(out, "order %d placed\n", result.OrderID)
			for _, c := range result.Carriers {
				fmt.Fprintf(out, "  instance %d: %s\n", c.InstanceID, c.Carrier)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&opts.instance, "instance", 0, "shipping instance id to check out with")
	cmd.Flags().StringVar(&opts.carrier, "carrier", "", "carrier option, \"custom\", or an option index")
	cmd.Flags().StringVar(&opts.custom, "custom", "", "free-text carrier used with --carrier=custom")
	cmd.Flags().DurationVar(&opts.quietPeriod, "quiet-period", carriersync.DefaultQuietPeriod, "debounce before a selection is saved")
	cmd.Flags().BoolVar(&opts.skipSync, "skip-sync", false, "only send the values with the order form")
	return cmd
}

func resultNotices(r *SimulationResult) []checkout.Notice {
	if r == nil {
		return nil
	}
	return r.Notices
}

func runSimulation(ctx context.Context, client *checkout.Client, rootOpts *RootOptions, opts *simulateOptions, cmd *cobra.Command) (*SimulationResult, error) {
	id := shipdomain.InstanceID(opts.instance)
	rates, err := client.Rates(ctx)
	if err != nil {
		return nil, err
	}
	rateID := ""
	for _, r := range rates {
		if r.InstanceID == opts.instance {
			rateID = r.ID
			break
		}
	}
	if rateID == "" {
		return nil, fmt.Errorf("no rate quoted for instance %d", opts.instance)
	}
	if err := client.ChooseShippingMethods(ctx, []string{rateID}); err != nil {
		return nil, err
	}

	if !opts.skipSync {
		sync := carriersync.New(client,
			carriersync.WithQuietPeriod(opts.quietPeriod),
			carriersync.WithLogger(newLogger(rootOpts, cmd.ErrOrStderr())))
		defer sync.Close()
		sync.RatesRendered([]string{rateID})
		if opts.carrier != "" {
			sync.SelectorChanged(id, opts.carrier)
		}
		if opts.custom != "" {
			sync.CustomTextChanged(id, opts.custom)
		}
		if err := waitSettled(ctx, sync, id); err != nil {
			return nil, err
		}
	}

	carriers := map[shipdomain.InstanceID]string{}
	customs := map[shipdomain.InstanceID]string{}
	if opts.carrier != "" {
		carriers[id] = opts.carrier
	}
	if opts.custom != "" {
		customs[id] = opts.custom
	}
	order, notices, err := client.PlaceOrder(ctx, carriers, customs)
	if err != nil {
		return &SimulationResult{Notices: notices}, err
	}
	final, err := client.ThankYou(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &SimulationResult{OrderID: final.ID, Carriers: final.Carriers}, nil
}

func waitSettled(ctx context.Context, sync *carriersync.Client, id shipdomain.InstanceID) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		if !sync.Pending(id) && !sync.InFlight(id) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for carrier save: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
