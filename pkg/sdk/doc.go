// Package agricarte is the Go client of the agricarte map service.
//
// It bundles three things:
//   - Client, an HTTP client for the REST API (person autocomplete, SIRET
//     lookup, marker snapshot, contract registration);
//   - the debounced person search widget, driven through View and Fields;
//   - the marker filter engine, driven through Pin, Indicator, Notifier and Form.
//
// # Remote person search
//
//	client, _ := agricarte.New("http://localhost:8080", agricarte.WithAPIKey(key))
//	w := agricarte.NewReferentSearch(client, view, fields)
//	defer w.Close()
//	w.Input("mar") // debounced, renders through view
//
// # Map filter
//
//	data, _ := client.Markers(ctx)
//	engine := agricarte.NewMarkerEngine(agricarte.Pins(data, pinFor),
//	    agricarte.WithNotifier(toast),
//	)
//	outcome, _ := engine.Filter(ctx, agricarte.Criteria{TypeContrat: "MAEC", ActiveOnly: true})
package agricarte
