package main

import (
	"encoding/json"
	"fmt"

	"github.com/hyperengineering/revise"
	"github.com/spf13/cobra"
)

// outputAsJSON writes any value as formatted JSON to the command's stdout.
func outputAsJSON(cmd *cobra.Command, v interface{}) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputReviewState prints a review state in the configured format.
func outputReviewState(cmd *cobra.Command, st *revise.ReviewState) error {
	if outputJSON {
		return outputAsJSON(cmd, st)
	}

	out := cmd.OutOrStdout()
	if st.LastRating < 3 {
		printWarning(out, "Lapse recorded for %s/%s", st.UserID, st.ItemID)
	} else {
		printSuccess(out, "Outcome recorded for %s/%s", st.UserID, st.ItemID)
	}
	fmt.Fprintf(out, "  Rating:      %d\n", st.LastRating)
	fmt.Fprintf(out, "  Repetitions: %d\n", st.RepetitionCount)
	fmt.Fprintf(out, "  Easiness:    %.2f\n", st.EasinessFactor)
	fmt.Fprintf(out, "  Next review: %s (in %d days)\n",
		st.NextReviewAt.Format("2006-01-02"), st.IntervalDays)
	return nil
}

// outputDueReviews prints due recommendations in the configured format.
func outputDueReviews(cmd *cobra.Command, recs []revise.Recommendation) error {
	if outputJSON {
		return outputAsJSON(cmd, recs)
	}

	out := cmd.OutOrStdout()

	if len(recs) == 0 {
		fmt.Fprintln(out, "No reviews due.")
		return nil
	}

	fmt.Fprintf(out, "%d reviews due:\n\n", len(recs))
	for i, rec := range recs {
		fmt.Fprintf(out, "%d. %s (priority %d, %s)\n", i+1, rec.ItemID, rec.Priority, rec.Reason)
		fmt.Fprintf(out, "   Due since: %s\n", rec.NextReviewAt.Format("2006-01-02"))
		if i < len(recs)-1 {
			fmt.Fprintln(out)
		}
	}
	return nil
}
