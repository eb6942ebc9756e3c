// Package linear implements the penalized and plain linear estimators used
// as base models for stability selection: an L1-penalized least squares
// regressor (Lasso, cyclic coordinate descent), an L1-penalized logistic
// regressor (proximal gradient), and the unpenalized counterparts used to
// refit on a selected feature subset.
//
// All estimators accept gonum matrices, never mutate their inputs, and
// expose fitted weights through Coef and Intercept.
package linear
