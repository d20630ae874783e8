package main

import (
	"context"
	"os"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/meridianyield/scm/internal/chain"
	"github.com/meridianyield/scm/internal/config"
	"github.com/meridianyield/scm/internal/engine"
	"github.com/meridianyield/scm/internal/logger"
	"github.com/meridianyield/scm/internal/scm"
	"github.com/meridianyield/scm/internal/sim"
	"github.com/meridianyield/scm/internal/slots"
	"github.com/meridianyield/scm/internal/state"
	"github.com/meridianyield/scm/internal/types"
	"github.com/meridianyield/scm/internal/web"
)

const (
	LOOP_INTERVAL = 10 * time.Minute
)

// main is the entry point for the SCM keeper.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("SCM Keeper Starting...")

	scmMode := os.Getenv("SCM_MODE")

	// Initialize Database Connection. Live mode requires persistence; sim
	// mode runs without it when no database is reachable.
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		if scmMode != "sim" {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		log.Warn().Err(err).Msg("Database unavailable; sim mode continues without persistence")
	} else {
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
	}

	// Load Strategy Parameters
	defaultParams := config.DefaultStrategyParams
	strategyParams := &defaultParams
	if state.DB != nil {
		loaded, err := state.LoadActiveStrategyParameters(scm.DEFAULT_CONFIG_NAME)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load active strategy parameters, using defaults and saving.")
			if _, err := state.SaveStrategyParameters(defaultParams, scm.DEFAULT_CONFIG_NAME, scm.DEFAULT_CONFIG_VERSION, true); err != nil {
				log.Fatal().Err(err).Msg("Failed to save initial default strategy parameters.")
			}
		} else {
			strategyParams = loaded
		}
		log.Info().Msg("Strategy parameters loaded successfully.")
	} else {
		log.Info().Msg("Using default strategy parameters.")
	}

	// --- 2. Collaborator Initialization (with Safety Switch) ---
	var engineCfg engine.Config
	var basefee scm.BasefeeSource

	switch scmMode {
	case "live":
		log.Warn().Msg("Initializing SCM in LIVE mode. Real transactions will be broadcast.")
		if err := config.LoadConfig(); err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		client, err := chain.Dial(config.NodeRPC, config.SignerKeyHex, config.ChainID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to the chain")
		}
		defer client.Close()
		log.Info().Str("endpoint", config.NodeRPC).Str("sender", client.Sender().Hex()).Msg("Chain connected")

		registry, err := buildLiveRegistry(client)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build slot registry")
		}
		book, err := chain.NewBookClient(client, config.AuctionAddress, config.BaseTokenAddress)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to bind auction book")
		}

		engineCfg = engine.Config{
			StakedToken: chain.NewStakedTokenClient(client, config.StakedTokenAddress),
			BaseToken:   chain.NewTokenClient(client, config.BaseTokenAddress),
			Registry:    registry,
			AuctionBook: book,
			Accounting:  chain.NewVaultClient(client, config.VaultAddress),
			SelfAddress: config.StrategyAddress,
			Params:      *strategyParams,
		}
		basefee = client

	case "sim":
		log.Info().Msg("Initializing SCM in SIM mode. All state is in-memory.")
		engineCfg, basefee = buildSimWorld(*strategyParams)

	default:
		log.Fatal().Msg("SCM_MODE is not set to 'live' or 'sim'. Halting to prevent accidental execution.")
	}

	// --- 3. Create Strategy and Keeper with Dependency Injection ---
	strategy, err := engine.New(engineCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create strategy engine")
	}

	keeper, err := scm.NewKeeper(scm.Config{
		Strategy:      strategy,
		Basefee:       basefee,
		ConfigName:    scm.DEFAULT_CONFIG_NAME,
		ConfigVersion: scm.DEFAULT_CONFIG_VERSION,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create keeper instance")
	}

	// --- 4. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, strategy)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting SCM web dashboard")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 5. Start Keeper Main Loop ---
	log.Info().Str("interval", LOOP_INTERVAL.String()).Msg("Starting keeper main loop")
	keeper.RunLoop(context.Background(), LOOP_INTERVAL)
}

// buildLiveRegistry binds every configured slot contract in slot order.
func buildLiveRegistry(client *chain.Client) (*slots.Registry, error) {
	registry, err := slots.NewRegistry(chain.NewSlotClient(client, config.SlotAddresses[0]))
	if err != nil {
		return nil, err
	}
	for _, addr := range config.SlotAddresses[1:] {
		if err := registry.Add(chain.NewSlotClient(client, addr)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// buildSimWorld assembles an in-memory strategy world for dry runs: a funded
// strategy account, one idle slot and an empty auction book.
func buildSimWorld(params types.StrategyParams) (engine.Config, scm.BasefeeSource) {
	clock := sim.NewClock(time.Now().UTC())
	self := sim.NewAddress()
	management := sim.NewAddress()

	base := sim.NewToken(sim.NewAddress(), self)
	staked := sim.NewStakedToken(sim.NewAddress(), self, base, 7*24*time.Hour, clock)
	staked.Mint(self, sdkmath.NewIntWithDecimal(100_000, 18))

	registry, err := slots.NewRegistry(sim.NewSlot(staked, base, self))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed simulated slot registry")
	}

	acct := sim.NewAccounting(management)
	acct.SetTotalAssets(sdkmath.NewIntWithDecimal(100_000, 18))

	return engine.Config{
		StakedToken: staked,
		BaseToken:   base,
		Registry:    registry,
		AuctionBook: sim.NewBook(clock),
		Accounting:  acct,
		SelfAddress: self,
		Params:      params,
		Now:         clock.Now,
	}, scm.StaticBasefee(0)
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
