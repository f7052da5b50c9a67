/*Package interval implements sorted-endpoint interval lookup using PosType
  coordinates and binary search (SearchPosTypes). The region package builds
  on this to answer profile-boundary-region overlap queries; it assumes
  every position fits in a PosType, currently defined as int32.
*/
package interval
