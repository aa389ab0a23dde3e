package cmd

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/quaverlabs/partita/scoreio"
	"github.com/quaverlabs/partita/validate"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves validation over HTTP",
	Long:  `Serves a POST /validate endpoint taking a YAML score body.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

// HandleValidate validates the YAML score in the request body and
// responds with the JSON validation result. Exported so the e2e tests
// can hit it without a listener.
func HandleValidate(w http.ResponseWriter, r *http.Request) {
	score, err := scoreio.Read(r.Body)
	if err != nil {
		http.Error(w, "could not parse score: "+err.Error(), http.StatusBadRequest)
		return
	}
	res := validate.Validate(*score, validate.DefaultOptions())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func serve() {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/validate", HandleValidate).Methods("POST")
	log.Fatal(http.ListenAndServe(serveAddr, cors.Default().Handler(router)))
}
