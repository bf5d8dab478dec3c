package constants

// Environments
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Profile store backends
const (
	ProfileStoreFirestore = "firestore"
	ProfileStorePostgres  = "postgres"
)

// Pub/Sub providers
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// TopicPrefixUser prefixes the FCM topic a user's devices subscribe to.
const TopicPrefixUser = "user-"
