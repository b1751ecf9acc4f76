package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mohitkumar/closureflow/agent"
	"github.com/mohitkumar/closureflow/analytics"
	"github.com/mohitkumar/closureflow/closure"
	"github.com/mohitkumar/closureflow/config"
	"github.com/mohitkumar/closureflow/flow"
	"github.com/mohitkumar/closureflow/logger"
	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cfg struct {
	config.Config
}
type cli struct {
	cfg cfg
}

func setupFlags(cmd *cobra.Command) error {
	defaults := closure.DefaultOptions()
	flags := cmd.PersistentFlags()
	flags.String("config-file", "", "Path to config file.")
	flags.String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	flags.String("redis-password", "", "redis password")
	flags.Int("redis-pool-size", 0, "redis connections per node, 0 uses the client default")
	flags.String("namespace", "closureflow", "namespace used in storage")
	flags.Int("http-port", 8080, "http port for rest endpoints")
	flags.String("storage-impl", "memory", "implementation of snapshot storage, redis or memory")
	flags.Duration("snapshot-ttl", 24*time.Hour, "how long snapshots are kept, 0 keeps them forever")
	flags.String("handler-url", "", "base url of the task handlers, empty runs the local handlers")
	flags.Duration("handler-timeout", 30*time.Second, "http client timeout for task handler calls")
	flags.Int("executor-capacity", 512, "queued workflow instances")
	flags.Int("executor-concurrency", 16, "workflow instances run at the same time")
	flags.Duration("workflow-timeout", defaults.Timeout, "ceiling of one workflow instance")
	flags.Duration("wait-interval", defaults.WaitInterval, "pause before every organization status check")
	flags.Duration("retry-interval", defaults.RetryInterval, "first backoff of the account close retry")
	flags.Duration("task-timeout", defaults.TaskTimeout, "timeout of one task attempt, 0 disables it")
	flags.String("analytics-file", "", "file receiving the action audit trail, empty disables it")
	flags.String("log-level", "info", "log level")
	return viper.BindPFlags(flags)
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	var err error

	configFile := viper.GetString("config-file")
	if len(configFile) != 0 {
		viper.SetConfigFile(configFile)
		if err = viper.ReadInConfig(); err != nil {
			// it's ok if config file doesn't exist
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return err
			}
		}
	}

	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Password = viper.GetString("redis-password")
	c.cfg.RedisConfig.PoolSize = viper.GetInt("redis-pool-size")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.RedisConfig.TTL = viper.GetDuration("snapshot-ttl")
	c.cfg.InMemoryConfig.TTL = viper.GetDuration("snapshot-ttl")
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.StorageType = config.StorageType(viper.GetString("storage-impl"))
	c.cfg.HandlerUrl = viper.GetString("handler-url")
	c.cfg.HandlerTimeout = viper.GetDuration("handler-timeout")
	c.cfg.ExecutorCapacity = viper.GetInt("executor-capacity")
	c.cfg.Concurrency = viper.GetInt("executor-concurrency")
	c.cfg.WorkflowTimeout = viper.GetDuration("workflow-timeout")
	c.cfg.WaitInterval = viper.GetDuration("wait-interval")
	c.cfg.RetryInterval = viper.GetDuration("retry-interval")
	c.cfg.TaskTimeout = viper.GetDuration("task-timeout")
	c.cfg.LogLevel = viper.GetString("log-level")
	c.cfg.AnalyticsConfig.CollectorType = analytics.NOOP_DATA_COLLECTOR
	if file := viper.GetString("analytics-file"); len(file) != 0 {
		c.cfg.AnalyticsConfig.CollectorType = analytics.LOG_FILE_DATA_COLLECTOR
		c.cfg.AnalyticsConfig.FileName = file
	}

	if err = logger.Init(logger.Config{Level: c.cfg.LogLevel}); err != nil {
		return err
	}
	return c.cfg.Validate()
}

func (c *cli) serve(cmd *cobra.Command, args []string) error {
	a, err := agent.New(c.cfg.Config)
	if err != nil {
		return err
	}
	if err = a.Start(); err != nil {
		return err
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	defer logger.Sync()
	return a.Shutdown()
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	accountId, err := cmd.Flags().GetString("account-id")
	if err != nil {
		return err
	}
	if err = analytics.InitDataCollector(c.cfg.AnalyticsConfig); err != nil {
		return err
	}
	defer analytics.Close()

	dao, closeDao, err := agent.NewFlowDao(c.cfg.Config)
	if err != nil {
		return err
	}
	defer closeDao()

	fl, err := flow.Convert(closure.Definition(c.cfg.WorkflowOptions()), agent.NewHandler(c.cfg.Config))
	if err != nil {
		return err
	}
	svc := service.NewWorkflowExecutionService(fl, dao, closure.ValidateInput, 1, 1, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	input := map[string]any{
		closure.ACCOUNT_ID_KEY: accountId,
		"payload":              map[string]any{},
	}
	flowId, out, runErr := svc.RunFlow(ctx, input)

	result := map[string]any{"flowId": flowId}
	if runErr != nil {
		result["error"] = runErr.Error()
		var flowErr *flow.FlowError
		if errors.As(runErr, &flowErr) {
			result["failure"] = map[string]any{"kind": flowErr.Kind, "action": flowErr.Action}
			result["data"] = flowErr.Data
		}
	} else {
		result["data"] = out
	}
	if err = printJSON(cmd, result); err != nil {
		return err
	}
	return runErr
}

func (c *cli) definition(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	data, err := model.EncodeWorkflow(closure.Definition(c.cfg.WorkflowOptions()), format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(append(data, '\n'))
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("can not encode output: %w", err)
	}
	return nil
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:               "closureflow",
		Short:             "runs the account closure workflow",
		PersistentPreRunE: cli.setupConfig,
		SilenceUsage:      true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "start the http trigger and the executor pool",
		RunE:  cli.serve,
	}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one workflow instance and print its result",
		RunE:  cli.run,
	}
	runCmd.Flags().String("account-id", "", "account to close")
	runCmd.MarkFlagRequired("account-id")
	definitionCmd := &cobra.Command{
		Use:   "definition",
		Short: "print the workflow definition",
		RunE:  cli.definition,
	}
	definitionCmd.Flags().String("format", model.FORMAT_JSON, "output format, json or yaml")
	cmd.AddCommand(serveCmd, runCmd, definitionCmd)

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
