package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	rates "github.com/malusev998/privat-rates"
	"github.com/malusev998/privat-rates/fetchers"
	"github.com/malusev998/privat-rates/storage"
)

type (
	StorageConfig  map[storage.Provider]interface{}
	Options        struct {
		APIURL     string
		APITimeout time.Duration
		LogLevel   string
	}
	StorageOptions struct {
		Storage       []storage.Provider
		StorageConfig StorageConfig
	}
)

func newViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("api.url", fetchers.PrivatBankURL)
	v.SetDefault("api.timeout", time.Duration(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("storage", []string{})
	v.SetDefault("migrate", false)

	v.SetEnvPrefix("PRIVAT_RATES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		return v, nil
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return v, nil
	}

	v.SetConfigFile(configFile)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error while reading in the config file: %w", err)
	}

	return v, nil
}

func getMysqlDSN(config map[string]string) string {
	mysqlDriverConfig := mysql.NewConfig()
	mysqlDriverConfig.User = config["user"]
	mysqlDriverConfig.Passwd = config["password"]
	mysqlDriverConfig.Addr = config["addr"]
	mysqlDriverConfig.Net = "tcp"
	mysqlDriverConfig.DBName = config["db"]

	return mysqlDriverConfig.FormatDSN()
}

func loadOptions(v *viper.Viper) *Options {
	return &Options{
		APIURL:     v.GetString("api.url"),
		APITimeout: v.GetDuration("api.timeout"),
		LogLevel:   v.GetString("log.level"),
	}
}

// loadStorageOptions is only needed when reports are stored.
func loadStorageOptions(ctx context.Context, v *viper.Viper, log *logrus.Logger) (*StorageOptions, error) {
	storages, err := storage.ConvertToProvidersFromStringSlice(v.GetStringSlice("storage"))

	if err != nil {
		return nil, err
	}

	mysqlConfig := v.GetStringMapString("databases.mysql")
	mongodbConfig := v.GetStringMapString("databases.mongodb")

	storageBaseConfig := storage.BaseConfig{
		Cxt:     ctx,
		Migrate: v.GetBool("migrate"),
		Logger:  log,
	}

	return &StorageOptions{
		Storage: storages,
		StorageConfig: StorageConfig{
			storage.MySQL: storage.MySQLConfig{
				BaseConfig:       storageBaseConfig,
				ConnectionString: getMysqlDSN(mysqlConfig),
				TableName:        mysqlConfig["table"],
			},
			storage.MongoDB: storage.MongoDBConfig{
				BaseConfig:       storageBaseConfig,
				ConnectionString: mongodbConfig["uri"],
				Database:         mongodbConfig["database"],
				Collection:       mongodbConfig["collection"],
			},
		},
	}, nil
}

func createStorages(options *StorageOptions) ([]rates.Storage, error) {
	storages := make([]rates.Storage, 0, len(options.Storage))
	for _, s := range options.Storage {
		c, ok := options.StorageConfig[s]
		if !ok {
			return nil, fmt.Errorf("storage %s does not exist", s)
		}

		st, err := storage.NewStorage(s, c)

		if err != nil {
			closeStorages(storages)
			return nil, err
		}

		storages = append(storages, st)
	}

	return storages, nil
}

func closeStorages(storages []rates.Storage) {
	for _, st := range storages {
		_ = st.Close()
	}
}
